// Package storage persists freqtrack run records.
package storage

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/cwbudde/algo-freqtrack/measure/freqtrack"
)

// Store defines persistence operations for estimation runs.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]RunInfo, error)
	DeleteRun(ctx context.Context, id string) error
}

// VersionedRecord tags persisted payloads with their layout version.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord is the persisted form of one estimation run.
type RunRecord struct {
	VersionedRecord
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Config    freqtrack.Config `json:"config"`

	InitialTheta float64 `json:"initial_theta"`
	InitialHz    float64 `json:"initial_hz"`
	FinalTheta   float64 `json:"final_theta"`
	FinalHz      float64 `json:"final_hz"`
	ErrorHz      float64 `json:"error_hz"`
	ErrorPercent float64 `json:"error_percent"`

	CaptureIndex    int     `json:"capture_index"`
	CaptureCount    int     `json:"capture_count"`
	CaptureFallback bool    `json:"capture_fallback"`
	InitialMSE      float64 `json:"initial_mse"`
	FinalMSE        float64 `json:"final_mse"`

	ThetaHistory []float64 `json:"theta_history"`
	MSE          []float64 `json:"mse"`
	MSEFirst     []float64 `json:"mse_first"`

	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// RunInfo is the listing view of a stored run.
type RunInfo struct {
	ID            string
	CreatedAt     time.Time
	FundamentalHz float64
	FinalHz       float64
	ErrorHz       float64
}

// Info returns the listing view of r.
func (r RunRecord) Info() RunInfo {
	return RunInfo{
		ID:            r.ID,
		CreatedAt:     r.CreatedAt,
		FundamentalHz: r.Config.FundamentalHz,
		FinalHz:       r.FinalHz,
		ErrorHz:       r.ErrorHz,
	}
}

// NewRunRecord captures res under a fresh random ID.
func NewRunRecord(res *freqtrack.Result, createdAt time.Time) (RunRecord, error) {
	if res == nil || res.Search == nil || res.Outputs == nil {
		return RunRecord{}, fmt.Errorf("storage: incomplete result")
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return RunRecord{}, fmt.Errorf("storage: generate run id: %w", err)
	}

	initialMSE, _ := res.InitialMSE()
	finalMSE, _ := res.FinalMSE()
	cfg := res.Config
	if !cfg.Noise && (math.IsNaN(cfg.SNRdB) || math.IsInf(cfg.SNRdB, 0)) {
		// unused, and JSON cannot carry it
		cfg.SNRdB = 0
	}

	return RunRecord{
		VersionedRecord: VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              id.String(),
		CreatedAt:       createdAt.UTC(),
		Config:          cfg,
		InitialTheta:    res.InitialTheta,
		InitialHz:       res.InitialFreq(),
		FinalTheta:      res.FinalTheta,
		FinalHz:         res.FinalFreq(),
		ErrorHz:         res.ErrorHz(),
		ErrorPercent:    res.ErrorPercent(),
		CaptureIndex:    res.Search.Index,
		CaptureCount:    res.Search.Count,
		CaptureFallback: res.Search.Fallback,
		InitialMSE:      initialMSE,
		FinalMSE:        finalMSE,
		ThetaHistory:    slices.Clone(res.ThetaHistory),
		MSE:             slices.Clone(res.Search.MSE),
		MSEFirst:        slices.Clone(res.Search.MSEFirst),
		ElapsedSeconds:  res.Elapsed.Seconds(),
	}, nil
}

func sortInfos(infos []RunInfo) {
	slices.SortFunc(infos, func(a, b RunInfo) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}
