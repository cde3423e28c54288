package main

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/plus3/lattice/internal/demo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulate(t *testing.T) {
	cfg := defaultConfig()
	cfg.Boxes = 3
	cfg.Duration = "1s"
	cfg.TraceEvery = "500ms"

	var buf bytes.Buffer
	require.NoError(t, simulate(&cfg, zerolog.Nop(), &buf))

	var trace demo.Trace
	require.NoError(t, json.Unmarshal(buf.Bytes(), &trace))

	// 60 ticks of 16.666666ms sample once at tick 31
	require.Len(t, trace.Frames, 1)
	assert.Equal(t, uint64(31), trace.Frames[0].Tick)
	assert.Len(t, trace.Frames[0].Meshes, 4)
	assert.Equal(t, "0@1", trace.Frames[0].Meshes[0].Entity)
}
