package array

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"code.cloudfoundry.org/bytefmt"
	"github.com/gofrs/flock"
	natefinch "github.com/natefinch/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spacemeshos/raid/bits"
	"github.com/spacemeshos/raid/config"
	"github.com/spacemeshos/raid/persistence"
	"github.com/spacemeshos/raid/shared"
	"github.com/spacemeshos/raid/stripe"
)

// Array stores a payload as a sequence of RAID3 stripes spread over
// cfg.Members drive files, the last of which holds parity.
//
// An Array owns its datadir exclusively: New takes a file lock which is held
// until Close. Operations on one Array are serialized.
type Array struct {
	numStripesProcessed atomic.Uint64

	cfg       Config
	diskState *DiskState
	fileLock  *flock.Flock
	mtx       sync.Mutex

	logger *zap.Logger
}

func New(opts ...OptionFunc) (*Array, error) {
	options := &option{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	if err := options.validate(); err != nil {
		return nil, err
	}

	cfg := *options.cfg
	if err := os.MkdirAll(cfg.DataDir, shared.OwnerReadWriteExec); err != nil {
		return nil, fmt.Errorf("dir creation failure: %w", err)
	}

	fl := flock.New(filepath.Join(cfg.DataDir, LockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("flock %s: %w", fl.Path(), err)
	} else if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, fl.Path())
	}

	a := &Array{
		cfg:       cfg,
		diskState: NewDiskState(cfg.DataDir, cfg.ChunkSize),
		fileLock:  fl,
		logger:    options.logger,
	}

	m, err := LoadMetadata(cfg.DataDir)
	switch {
	case errors.Is(err, shared.ErrStateMetadataFileMissing):
	case err != nil:
		fl.Unlock()
		return nil, err
	default:
		if err := verifyMetadata(m, cfg); err != nil {
			fl.Unlock()
			return nil, err
		}
	}

	return a, nil
}

// Close releases the datadir lock.
func (a *Array) Close() error {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	if a.fileLock == nil {
		return nil
	}
	if err := a.fileLock.Unlock(); err != nil {
		return fmt.Errorf("failed to unlock %s: %w", a.fileLock.Path(), err)
	}
	a.fileLock = nil
	return nil
}

func (a *Array) Config() Config {
	return a.cfg
}

// SessionNumStripes returns the number of stripes handled by the current or
// last operation.
func (a *Array) SessionNumStripes() uint64 {
	return a.numStripesProcessed.Load()
}

// Encode stores size bytes read from r, replacing any payload previously held
// by the array. The last stripe is zero padded. The array is reported as not
// initialized until all drives are written.
func (a *Array) Encode(ctx context.Context, r io.Reader, size uint64) error {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	if m, err := LoadMetadata(a.cfg.DataDir); err == nil {
		if err := verifyMetadata(m, a.cfg); err != nil {
			return err
		}
	} else if !errors.Is(err, shared.ErrStateMetadataFileMissing) {
		return err
	}

	layout := config.DeriveLayout(a.cfg, size)
	if err := a.checkSpace(layout); err != nil {
		return err
	}

	if err := removeMetadata(a.cfg.DataDir); err != nil {
		return err
	}
	a.numStripesProcessed.Store(0)

	a.logger.Info("encoding payload",
		zap.Uint64("size", size),
		zap.Uint64("stripes", layout.NumStripes),
		zap.Uint64("padding", layout.Padding),
		zap.Int("members", a.cfg.Members),
		zap.Int("chunkSize", a.cfg.ChunkSize),
		zap.String("datadir", a.cfg.DataDir),
	)

	w, err := persistence.CreateDrives(a.cfg.DataDir, a.cfg.Members, a.cfg.ChunkSize)
	if err != nil {
		return err
	}
	if err := a.encodeStripes(ctx, r, size, layout, w); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	if err := SaveMetadata(a.cfg.DataDir, newMetadata(a.cfg, layout, size)); err != nil {
		return err
	}

	a.logger.Info("payload encoded", zap.Uint64("stripes", layout.NumStripes))
	return nil
}

func (a *Array) encodeStripes(ctx context.Context, r io.Reader, size uint64, layout config.Layout, w *persistence.GroupWriter) error {
	s, err := stripe.NewRAID3(a.cfg.Members, a.cfg.ChunkSize)
	if err != nil {
		return err
	}

	stripesChan := make(chan []bits.Bits, a.cfg.BufferedStripes)
	errGroup, ctx := errgroup.WithContext(ctx)

	// Start compute worker.
	errGroup.Go(func() error {
		defer close(stripesChan)

		buf := make([]byte, layout.StripeDataSize)
		data := make([]bits.Bits, s.DataChunks())
		for i := range data {
			data[i] = bits.Zero(a.cfg.ChunkSize)
		}

		remaining := size
		for k := uint64(0); k < layout.NumStripes; k++ {
			select {
			case <-ctx.Done():
				a.logger.Info("encoding stopped", zap.Uint64("stripe", k))
				return ctx.Err()
			default:
			}

			// The last stripe might be partially filled.
			n := min(remaining, layout.StripeDataSize)
			clear(buf[n:])
			if _, err := io.ReadFull(r, buf[:n]); err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
					return fmt.Errorf("%w: stripe %d", ErrPayloadTooShort, k)
				}
				return fmt.Errorf("read payload: %w", err)
			}
			remaining -= n

			for i := range data {
				data[i].CopyFrom(buf[i*a.cfg.ChunkSize:])
			}
			if err := s.Write(data); err != nil {
				return err
			}

			members := make([]bits.Bits, s.Members())
			for i := range members {
				if members[i], err = s.Member(i); err != nil {
					return err
				}
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case stripesChan <- members:
			}
		}
		return nil
	})

	// Start IO worker.
	errGroup.Go(func() error {
		var k uint64
		for {
			select {
			case <-ctx.Done():
				return w.Flush()
			case members, ok := <-stripesChan:
				if !ok {
					return w.Flush()
				}

				if err := w.Write(members); err != nil {
					return fmt.Errorf("write stripe %d: %w", k, err)
				}
				k++
				a.numStripesProcessed.Store(k)
				a.logger.Debug("stripe written", zap.Uint64("stripe", k-1))
			}
		}
	})

	return errGroup.Wait()
}

func (a *Array) checkSpace(layout config.Layout) error {
	required := layout.TotalSize(a.cfg.Members)
	existing, err := a.diskState.NumBytesWritten()
	if err != nil {
		return err
	}
	if required <= existing {
		return nil
	}

	// Existing drives are truncated before writing.
	required -= existing
	availableSpace := shared.AvailableSpace(a.cfg.DataDir)
	if required > availableSpace {
		return fmt.Errorf("not enough disk space. required: %v, available: %v",
			bytefmt.ByteSize(required), bytefmt.ByteSize(availableSpace))
	}
	return nil
}

// Decode writes the payload held by the array to w. Every drive must be present.
func (a *Array) Decode(ctx context.Context, w io.Writer) error {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	return a.decode(ctx, w, persistence.NoMissingDrive)
}

// DecodeDegraded writes the payload held by the array to w without reading
// drive member. The member's chunk of every stripe is reconstructed from the
// other drives.
func (a *Array) DecodeDegraded(ctx context.Context, w io.Writer, member int) error {
	if err := a.checkMember(member); err != nil {
		return err
	}

	a.mtx.Lock()
	defer a.mtx.Unlock()

	return a.decode(ctx, w, member)
}

func (a *Array) decode(ctx context.Context, w io.Writer, missing int) error {
	m, err := a.loadMetadata()
	if err != nil {
		return err
	}

	a.logger.Info("decoding payload",
		zap.Uint64("size", m.PayloadSize),
		zap.Uint64("stripes", m.NumStripes),
		zap.Int("missing", missing),
	)

	data := make([]bits.Bits, a.cfg.DataChunks())
	for i := range data {
		data[i] = bits.Zero(a.cfg.ChunkSize)
	}

	remaining := m.PayloadSize
	return a.scan(ctx, m, missing, func(_ uint64, s *stripe.RAID3) error {
		if missing != persistence.NoMissingDrive {
			if err := restore(s, missing); err != nil {
				return err
			}
		}
		if err := s.Read(data); err != nil {
			return err
		}

		for _, chunk := range data {
			if remaining == 0 {
				break
			}
			p := chunk.Bytes()
			if uint64(len(p)) > remaining {
				p = p[:remaining]
			}
			if _, err := w.Write(p); err != nil {
				return fmt.Errorf("write payload: %w", err)
			}
			remaining -= uint64(len(p))
		}
		return nil
	})
}

// Rebuild regenerates the file of drive member from the other drives and
// replaces it atomically. The current content of the file, if any, is ignored.
func (a *Array) Rebuild(ctx context.Context, member int) error {
	if err := a.checkMember(member); err != nil {
		return err
	}

	a.mtx.Lock()
	defer a.mtx.Unlock()

	m, err := a.loadMetadata()
	if err != nil {
		return err
	}

	a.logger.Info("rebuilding drive",
		zap.Int("member", member),
		zap.Uint64("stripes", m.NumStripes),
		zap.String("datadir", a.cfg.DataDir),
	)

	filename := persistence.DrivePath(a.cfg.DataDir, member)
	tmpName := fmt.Sprintf("%s.tmp", filename)
	w, err := persistence.NewChunkWriter(tmpName, a.cfg.ChunkSize)
	if err != nil {
		return err
	}

	err = a.scan(ctx, m, member, func(_ uint64, s *stripe.RAID3) error {
		if err := restore(s, member); err != nil {
			return err
		}
		chunk, err := s.Member(member)
		if err != nil {
			return err
		}
		return w.Write(chunk)
	})
	if err != nil {
		w.Close()
		os.Remove(tmpName)
		return err
	}

	if err := w.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := natefinch.ReplaceFile(tmpName, filename); err != nil {
		return fmt.Errorf("atomic replace: %w", err)
	}

	a.logger.Info("drive rebuilt", zap.Int("member", member), zap.String("file", filename))
	return nil
}

// Verify scrubs the array and returns the indices of the stripes whose members
// do not XOR to zero.
func (a *Array) Verify(ctx context.Context) ([]uint64, error) {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	m, err := a.loadMetadata()
	if err != nil {
		return nil, err
	}

	a.logger.Info("verifying array", zap.Uint64("stripes", m.NumStripes))

	var inconsistent []uint64
	err = a.scan(ctx, m, persistence.NoMissingDrive, func(k uint64, s *stripe.RAID3) error {
		if !s.Syndrome().IsZero() {
			a.logger.Warn("inconsistent stripe", zap.Uint64("stripe", k))
			inconsistent = append(inconsistent, k)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("verification completed",
		zap.Uint64("stripes", m.NumStripes),
		zap.Int("inconsistent", len(inconsistent)),
	)
	return inconsistent, nil
}

// Reset deletes the drive files and the metadata from the datadir.
func (a *Array) Reset() error {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	files, err := persistence.DriveFiles(a.cfg.DataDir)
	if err != nil {
		return err
	}

	for _, file := range files {
		path := filepath.Join(a.cfg.DataDir, file.Name())
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to delete file (%v): %w", path, err)
		}
	}

	if err := removeMetadata(a.cfg.DataDir); err != nil {
		return err
	}

	a.numStripesProcessed.Store(0)
	a.logger.Info("array reset", zap.String("datadir", a.cfg.DataDir), zap.Int("drives", len(files)))
	return nil
}

// stripeFunc is called for every stripe of the array, in order, with the
// members loaded from the drives.
type stripeFunc func(k uint64, s *stripe.RAID3) error

// scan reads all stripes of the array and passes them to fn. Drive missing is
// not read; its member is left zeroed.
func (a *Array) scan(ctx context.Context, m *Metadata, missing int, fn stripeFunc) error {
	g, err := persistence.OpenDrives(a.cfg.DataDir, a.cfg.Members, a.cfg.ChunkSize, missing)
	if err != nil {
		return err
	}
	defer g.Close()

	if g.NumChunks() != m.NumStripes {
		return fmt.Errorf("%w: drives hold %d chunks, metadata records %d stripes",
			persistence.ErrDriveSizeMismatch, g.NumChunks(), m.NumStripes)
	}

	s, err := stripe.NewRAID3(a.cfg.Members, a.cfg.ChunkSize)
	if err != nil {
		return err
	}
	a.numStripesProcessed.Store(0)

	stripesChan := make(chan []bits.Bits, a.cfg.BufferedStripes)
	errGroup, ctx := errgroup.WithContext(ctx)

	// Start IO worker.
	errGroup.Go(func() error {
		defer close(stripesChan)

		for k := uint64(0); k < m.NumStripes; k++ {
			members := make([]bits.Bits, a.cfg.Members)
			for i := range members {
				members[i] = bits.Zero(a.cfg.ChunkSize)
			}
			if err := g.Next(members); err != nil {
				return fmt.Errorf("read stripe %d: %w", k, err)
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case stripesChan <- members:
			}
		}
		return nil
	})

	// Start compute worker.
	errGroup.Go(func() error {
		var k uint64
		for members := range stripesChan {
			if err := ctx.Err(); err != nil {
				return err
			}

			for i, member := range members {
				if err := s.SetMember(i, member); err != nil {
					return err
				}
			}
			if err := fn(k, s); err != nil {
				return fmt.Errorf("stripe %d: %w", k, err)
			}

			k++
			a.numStripesProcessed.Store(k)
		}
		return nil
	})

	return errGroup.Wait()
}

func (a *Array) loadMetadata() (*Metadata, error) {
	m, err := LoadMetadata(a.cfg.DataDir)
	if errors.Is(err, shared.ErrStateMetadataFileMissing) {
		return nil, shared.ErrArrayNotInitialized
	}
	if err != nil {
		return nil, err
	}
	if err := verifyMetadata(m, a.cfg); err != nil {
		return nil, err
	}
	return m, nil
}

func (a *Array) checkMember(member int) error {
	if member < 0 || member >= a.cfg.Members {
		return fmt.Errorf("%w: array has %d members, %d is not a valid index", stripe.ErrMemberIndex, a.cfg.Members, member)
	}
	return nil
}

// restore regenerates member i of s, if the layout of s supports it.
func restore(s stripe.Stripe, i int) error {
	r, ok := s.Restorer()
	if !ok {
		return ErrNoRestorer
	}
	return r.Restore(i)
}
