package chainstore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jihwankim/ptmcmc/internal/logging"
)

// Store appends thinned Records to a single rank's chain file,
// chain_<T>.txt, in the tab-separated layout:
//
//	logpost  logl  accept_rate  swap_accept_rate  x0  x1  ...  xN
//
// and periodically snapshots the running covariance to cov.npy.
// Adapted from the framework's report storage (directory creation,
// wrapped errors, logger-reported warnings), with the JSON report format
// swapped for the sampler's append-only text layout.
type Store struct {
	path    string
	logger  *logging.Logger
	file    *os.File
	w       *bufio.Writer
	covPath string
}

// New creates (or reopens, for resume) the chain file for temperature temp
// under outDir. Its covariance snapshot is always cov.npy, per spec.md
// §6's fixed artifact name — safe because only the cold rank ever calls
// SaveCovariance against a temperature-keyed Store.
func New(outDir string, temp float64, resume bool, logger *logging.Logger) (*Store, error) {
	return newStore(outDir, formatTemp(temp), "cov.npy", resume, logger)
}

// NewNamed creates (or reopens, for resume) a chain file named
// chain_<name>.txt under outDir, with its covariance snapshot at
// cov_<name>.npy. New derives name from a temperature and shares one
// fixed cov.npy; the RJMCMC driver derives name from a model name
// instead, and each model needs its own covariance file since several
// run side by side.
func NewNamed(outDir, name string, resume bool, logger *logging.Logger) (*Store, error) {
	return newStore(outDir, name, fmt.Sprintf("cov_%s.npy", name), resume, logger)
}

func newStore(outDir, name, covName string, resume bool, logger *logging.Logger) (*Store, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	fname := fmt.Sprintf("chain_%s.txt", name)
	path := filepath.Join(outDir, fname)

	flags := os.O_CREATE | os.O_WRONLY
	if resume {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open chain file: %w", err)
	}

	return &Store{
		path:    path,
		logger:  logger,
		file:    f,
		w:       bufio.NewWriter(f),
		covPath: filepath.Join(outDir, covName),
	}, nil
}

func formatTemp(temp float64) string {
	return strconv.FormatFloat(temp, 'f', 4, 64)
}

// Append writes one thinned Record as a tab-separated line.
func (s *Store) Append(r Record) error {
	parts := make([]string, 0, 4+len(r.X))
	parts = append(parts,
		strconv.FormatFloat(r.LogPost, 'g', -1, 64),
		strconv.FormatFloat(r.LogL, 'g', -1, 64),
		strconv.FormatFloat(r.AcceptRate, 'g', -1, 64),
		strconv.FormatFloat(r.SwapAcceptRate, 'g', -1, 64),
	)
	for _, v := range r.X {
		parts = append(parts, strconv.FormatFloat(v, 'g', -1, 64))
	}
	if _, err := s.w.WriteString(strings.Join(parts, "\t") + "\n"); err != nil {
		return fmt.Errorf("failed to append chain record: %w", err)
	}
	return nil
}

// Flush forces buffered records to disk. Call periodically (every ISave
// iterations) and on shutdown.
func (s *Store) Flush() error {
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush chain file: %w", err)
	}
	return nil
}

// SaveCovariance writes a snapshot of the running covariance as a NumPy
// .npy file, for downstream inspection with numpy.load.
func (s *Store) SaveCovariance(cov [][]float64) error {
	if err := writeNPY(s.covPath, cov); err != nil {
		s.logger.Warn("failed to save covariance snapshot", "error", err)
		return err
	}
	return nil
}

// Close flushes and closes the underlying file.
func (s *Store) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	return s.file.Close()
}

// Path returns the chain file path, for logging/progress reporting.
func (s *Store) Path() string {
	return s.path
}
