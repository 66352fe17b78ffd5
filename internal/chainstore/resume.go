package chainstore

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ResumeState is what a rank needs to continue sampling from an existing
// chain file: the last valid record, how many thinned rows were already
// written, and the local/swap accept-rate values to reseed the running
// counters from (rather than recomputing them from scratch).
type ResumeState struct {
	Last        Record
	RowCount    int64
	AcceptRate  float64
	SwapAccept  float64
	HadRecords  bool
}

// LoadResume reads an existing chain file at path and returns the state
// needed to resume. A truncated final line (a partial write from a
// killed process) is silently dropped rather than erroring, matching the
// upstream sampler's tolerant resume behavior.
func LoadResume(path string) (ResumeState, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return ResumeState{}, nil
	}
	if err != nil {
		return ResumeState{}, err
	}
	defer f.Close()

	var state ResumeState
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		rec, ok := parseLine(line)
		if !ok {
			continue // truncated/corrupt trailing line: skip, don't abort resume
		}
		state.Last = rec
		state.AcceptRate = rec.AcceptRate
		state.SwapAccept = rec.SwapAcceptRate
		state.RowCount++
		state.HadRecords = true
	}

	return state, scanner.Err()
}

func parseLine(line string) (Record, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < 4 {
		return Record{}, false
	}
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Record{}, false
		}
		vals[i] = v
	}
	return Record{
		LogPost:        vals[0],
		LogL:           vals[1],
		AcceptRate:     vals[2],
		SwapAcceptRate: vals[3],
		X:              vals[4:],
	}, true
}

// ResumeChain locates the chain file that Store would open for the given
// output directory and temperature and loads its resume state. Callers
// must use this before calling New, since New truncates the file when
// resume is false and appends to it otherwise — the file must be read
// first regardless of which mode the caller is about to open it in.
func ResumeChain(outDir string, temp float64) (ResumeState, error) {
	return ResumeNamed(outDir, formatTemp(temp))
}

// ResumeNamed is ResumeChain generalized to the chain_<name>.txt naming
// NewNamed uses, for callers (the RJMCMC driver) keyed by model name
// rather than by rung temperature.
func ResumeNamed(outDir, name string) (ResumeState, error) {
	fname := "chain_" + name + ".txt"
	return LoadResume(filepath.Join(outDir, fname))
}

// ReplayCounters reconstructs integer accept/reject counters from a
// resumed accept-rate fraction and an iteration count, using
// naccepted = iter * storedAcceptRate — the stored rate, not a recount
// from the chain file — exactly as the upstream sampler's resume branch
// does. This is a deliberate approximation (the product is truncated
// toward zero, not an exact replay) carried over as-is.
func ReplayCounters(iter int64, storedRate float64) int64 {
	return int64(float64(iter) * storedRate)
}
