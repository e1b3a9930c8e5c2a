// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package relay

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "0001= ", Prefix(1))
	assert.Equal(t, "0042= ", Prefix(42))
	assert.Equal(t, "12345= ", Prefix(12345))
}

func TestCopy(t *testing.T) {
	var buf bytes.Buffer

	r := New(&buf)
	require.NoError(t, r.Copy(7, strings.NewReader("one\ntwo\npartial")))

	assert.Equal(t, "0007= one\n0007= two\n0007= partial\n", buf.String())
}

func TestCopyEmpty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, New(&buf).Copy(1, strings.NewReader("")))
	assert.Empty(t, buf.String())
}

type failWriter struct{}

var errWrite = errors.New("write failed")

func (failWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestCopyWriteError(t *testing.T) {
	src := strings.NewReader("a\nb\nc\n")

	err := New(failWriter{}).Copy(1, src)
	require.ErrorIs(t, err, ErrRelayWrite)
	require.ErrorIs(t, err, errWrite)
	assert.Equal(t, 0, src.Len(), "the rest of the input should be drained")
}

// syncBuffer is a bytes.Buffer that can be read while writers are active.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func TestAttachInterleavesWholeLines(t *testing.T) {
	out := &syncBuffer{}
	r := New(out)

	const jobs, lines = 4, 50

	var wg sync.WaitGroup

	for job := 1; job <= jobs; job++ {
		w, done, err := r.Attach(job)
		require.NoError(t, err)

		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range lines {
				// write each line in two pieces to exercise partial reads
				fmt.Fprintf(w, "job %d ", job) //nolint:errcheck
				fmt.Fprintf(w, "line %d\n", i) //nolint:errcheck
			}

			w.Close() //nolint:errcheck
			<-done
		}()
	}

	wg.Wait()
	require.NoError(t, r.Wait())

	got := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, got, jobs*lines)

	for _, l := range got {
		var job, n, job2 int

		_, err := fmt.Sscanf(l, "%04d= job %d line %d", &job, &job2, &n)
		require.NoError(t, err, l)
		assert.Equal(t, job, job2, "line tagged with the wrong job: %q", l)
	}
}
