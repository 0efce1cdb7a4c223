package calculation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	nk "nebenkosten/internal/domain/nebenkosten"
)

const (
	// StorageKey is the fixed namespace the aggregate is persisted under.
	StorageKey = "nebenkosten-storage"

	// StorageVersion is the envelope version written by this build.
	StorageVersion = 1
)

// Rehydration outcomes.
const (
	OutcomeRestored        = "restored"
	OutcomeEmpty           = "empty"
	OutcomeCorrupt         = "corrupt"
	OutcomeVersionMismatch = "version_mismatch"
	OutcomeReadError       = "read_error"
)

var errVersionMismatch = errors.New("unsupported snapshot version")

// envelope is the persisted shape: {"version":1,"data":{...}}.
type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// encodeSnapshot serializes the full aggregate. Dates become ISO-8601 strings.
func encodeSnapshot(d nk.CalculationData) ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal aggregate: %w", err)
	}
	return json.Marshal(envelope{Version: StorageVersion, Data: data})
}

// decodeSnapshot restores an aggregate. Top-level entities missing from the
// blob keep their default value; unknown fields are ignored.
func decodeSnapshot(blob []byte, now time.Time) (nk.CalculationData, error) {
	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return nk.CalculationData{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != StorageVersion {
		return nk.CalculationData{}, fmt.Errorf("%w: %d", errVersionMismatch, env.Version)
	}
	if len(bytes.TrimSpace(env.Data)) == 0 || bytes.Equal(bytes.TrimSpace(env.Data), []byte("null")) {
		return nk.CalculationData{}, errors.New("snapshot has no data")
	}

	var stored CalculationPatch
	if err := json.Unmarshal(env.Data, &stored); err != nil {
		return nk.CalculationData{}, fmt.Errorf("unmarshal aggregate: %w", err)
	}
	return applyCalculation(nk.Default(now), stored), nil
}
