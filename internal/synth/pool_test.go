package synth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osgify/cli/internal/testutil"
)

func TestPool_ResultsInInputOrder(t *testing.T) {
	dir := t.TempDir()
	var jobs []Job
	for i := 0; i < 12; i++ {
		path := testutil.PlainJar(t, dir, fmt.Sprintf("lib%02d-1.0.0.jar", i))
		if i%4 == 3 {
			path = testutil.WriteJar(t, dir, fmt.Sprintf("lib%02d-1.0.0.jar", i),
				testutil.JarEntry{Name: "Default.class", Content: "x"})
		}
		a := classify(t, path, nil)
		jobs = append(jobs, Job{Artifact: a, Config: a.BndConfig()})
	}

	results := NewPool(New(Options{OutputDir: t.TempDir()}, nil, nil), 3).Run(context.Background(), jobs)
	require.Len(t, results, len(jobs))

	for i, res := range results {
		assert.Same(t, jobs[i].Artifact, res.Artifact)
		if i%4 == 3 {
			assert.Equal(t, Failed, res.State, "job %d", i)
			assert.True(t, errors.Is(res.Err, ErrDefaultPackage))
			continue
		}
		assert.Equal(t, Wrapped, res.State, "job %d", i)
		assert.FileExists(t, res.Target)
	}
}

func TestPool_CancelledSchedulesNothing(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	var jobs []Job
	for i := 0; i < 3; i++ {
		a := classify(t, testutil.PlainJar(t, dir, fmt.Sprintf("lib%d-1.0.0.jar", i)), nil)
		jobs = append(jobs, Job{Artifact: a, Config: a.BndConfig()})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewPool(New(Options{OutputDir: out}, nil, nil), 2).Run(ctx, jobs)
	for _, res := range results {
		assert.Equal(t, Failed, res.State)
		assert.ErrorIs(t, res.Err, context.Canceled)
	}
	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNewPool_DefaultWorkers(t *testing.T) {
	p := NewPool(New(Options{}, nil, nil), 0)
	assert.Positive(t, p.workers)
}
