package notch

import (
	"testing"

	"github.com/cwbudde/algo-freqtrack/internal/testutil"
)

func BenchmarkBankProcess(b *testing.B) {
	bank := mustBank(b, 3, 0.95)
	x := testutil.HarmonicSignal(0.785, 401)
	out := &Outputs{}

	b.ReportAllocs()
	for b.Loop() {
		bank.ProcessInto(out, x, 0.76)
	}
}

func BenchmarkSensitivityFull(b *testing.B) {
	bank := mustBank(b, 3, 0.95)
	out := bank.Process(testutil.HarmonicSignal(0.785, 401), 0.76)
	dst := &Sensitivities{}

	b.ReportAllocs()
	for b.Loop() {
		bank.SensitivityInto(dst, 0.76, out)
	}
}

func BenchmarkSensitivityFinal(b *testing.B) {
	bank := mustBank(b, 3, 0.95)
	out := bank.Process(testutil.HarmonicSignal(0.785, 401), 0.76)
	dst := make([]float64, 401)

	b.ReportAllocs()
	for b.Loop() {
		dst = bank.FinalSensitivity(dst, 0.76, out)
	}
}
