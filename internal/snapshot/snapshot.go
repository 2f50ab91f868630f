// Package snapshot converts colony state to and from a versioned,
// compressed file format. Actions are not saved: work that was in progress
// is saved as held and every hobbit comes back idle.
package snapshot

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// Version is the current snapshot schema version.
const Version = 1

type Header struct {
	Version  int    `json:"version"`
	ColonyID string `json:"colony_id"`
	Tick     uint64 `json:"tick"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed   int64    `json:"seed"`
	Clock  ClockV1  `json:"clock"`
	Tuning TuningV1 `json:"tuning"`
	Map    MapV1    `json:"map"`

	Hobbits   []HobbitV1   `json:"hobbits"`
	Buildings []BuildingV1 `json:"buildings"`

	// Held starts with the orders that were in progress, in claim order.
	Pending []OrderV1 `json:"pending"`
	Held    []OrderV1 `json:"held"`
}

type ClockV1 struct {
	Ticks uint64 `json:"ticks"`
	Time  int    `json:"time"`
	Frame int    `json:"frame"`
	Anim  int    `json:"anim"`
}

type TuningV1 struct {
	FramesPerSecond int `json:"frames_per_second"`
	ActEvery        int `json:"act_every"`
	RetryEvery      int `json:"retry_every"`
	WaitTimeout     int `json:"wait_timeout"`
	WanderOdds      int `json:"wander_odds"`
}

type MapV1 struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Rows   []string `json:"rows"`
}

type HobbitV1 struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Pos      [2]int `json:"pos"`
	Mood     int    `json:"mood"`
	Hunger   int    `json:"hunger"`
	Thoughts string `json:"thoughts"`
}

type BuildingV1 struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Name   string `json:"name"`
	Icon   string `json:"icon"`
	Center [2]int `json:"center"`
	Size   [2]int `json:"size"`
}

type OrderV1 struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Pos  [2]int `json:"pos"`
	Time int    `json:"time"`

	// Build orders carry the building they will place; Demolish orders
	// refer to a placed building by ID.
	Building   *BuildingV1 `json:"building,omitempty"`
	BuildingID string      `json:"building_id,omitempty"`
}

// Write encodes snap to w as a JSON header line followed by a gob body,
// all zstd-compressed.
func Write(w io.Writer, snap SnapshotV1) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 64*1024)
	hb, err := json.Marshal(snap.Header)
	if err != nil {
		enc.Close()
		return fmt.Errorf("header encode: %w", err)
	}
	hb = append(hb, '\n')
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Read decodes a snapshot written by Write.
func Read(r io.Reader) (SnapshotV1, error) {
	var snap SnapshotV1
	dec, err := zstd.NewReader(r)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return snap, fmt.Errorf("header read: %w", err)
	}
	var h Header
	if err := json.Unmarshal(line, &h); err != nil {
		return snap, fmt.Errorf("header decode: %w", err)
	}
	if h.Version != Version {
		return snap, fmt.Errorf("unsupported snapshot version %d", h.Version)
	}

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}

// Encode returns the compressed bytes of snap.
func Encode(snap SnapshotV1) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses bytes produced by Encode.
func Decode(data []byte) (SnapshotV1, error) {
	return Read(bytes.NewReader(data))
}

// WriteFile writes snap to path, creating parent directories.
func WriteFile(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := Write(f, snap); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads a snapshot from path.
func ReadFile(path string) (SnapshotV1, error) {
	f, err := os.Open(path)
	if err != nil {
		return SnapshotV1{}, err
	}
	defer f.Close()
	return Read(f)
}
