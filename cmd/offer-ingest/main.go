// Command offer-ingest bulk-imports promotional codes from gzipped code
// dumps. A code counts as genuine only when it appears in at least two of
// the dump files; single-file codes are treated as noise. The cross-file
// check runs in two passes with one bloom filter per file so the dumps never
// have to fit in memory.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/domain/offer"
	"github.com/xenking/storefront/internal/repository"
)

const (
	bloomCapacity = 120_000_000
	bloomFPR      = 0.001
	numFiles      = 3
	progressEvery = 10_000_000
	minCodeLen    = 8
	maxCodeLen    = 10
	dateLayout    = "2006-01-02"
)

func main() {
	var (
		dataDir     string
		databaseURL string
		ownerID     int64
		discount    string
		expiresOn   string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing offerbaseN.gz files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Int64Var(&ownerID, "owner-id", 0, "owner account the imported offers belong to")
	flag.StringVar(&discount, "discount", "10", "percentage discount granted by each imported code")
	flag.StringVar(&expiresOn, "expires-on", "", "expiry date for imported codes (YYYY-MM-DD)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if ownerID == 0 {
		slog.Error("owner ID is required: set --owner-id")
		os.Exit(1)
	}

	value, err := decimal.NewFromString(discount)
	if err != nil {
		slog.Error("invalid discount", slog.String("error", err.Error()))
		os.Exit(1)
	}

	expiresAt, err := parseExpiry(expiresOn)
	if err != nil {
		slog.Error("invalid expiry date", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL, ownerID, value, expiresAt); err != nil {
		slog.Error("offer ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("offer ingest completed successfully")
}

// parseExpiry resolves the expiry date, defaulting to one year from now.
func parseExpiry(date string) (time.Time, error) {
	if date == "" {
		return time.Now().UTC().AddDate(1, 0, 0), nil
	}
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse %q", date)
	}
	return t.UTC(), nil
}

func run(ctx context.Context, dataDir, databaseURL string, ownerID int64, value decimal.Decimal, expiresAt time.Time) error {
	files := make([]string, numFiles)
	for i := range numFiles {
		files[i] = filepath.Join(dataDir, fmt.Sprintf("offerbase%d.gz", i+1))
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	in := newIngester(files)

	slog.Info("building bloom filters", slog.Int("files", numFiles))

	if err := in.buildFilters(ctx); err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	slog.Info("matching codes across dumps")

	validCodes, err := in.validCodes(ctx)
	if err != nil {
		return errors.Wrap(err, "find valid codes")
	}

	slog.Info("valid codes found", slog.Int("count", len(validCodes)))

	if len(validCodes) == 0 {
		slog.Info("no valid codes to insert")
		return nil
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := writeOffers(ctx, repository.NewOfferRepository(pool), validCodes, ownerID, value, expiresAt); err != nil {
		return errors.Wrap(err, "write offers to database")
	}

	return nil
}

// ingester runs the cross-file duplicate detection over a set of code dumps.
// Pass one fills one bloom filter per dump; pass two re-reads every dump and
// records which codes some other dump's filter also claims.
type ingester struct {
	files    []string
	capacity uint
	fpr      float64
	filters  []*bloom.BloomFilter
}

func newIngester(files []string) *ingester {
	return &ingester{
		files:    files,
		capacity: bloomCapacity,
		fpr:      bloomFPR,
		filters:  make([]*bloom.BloomFilter, len(files)),
	}
}

// buildFilters populates one filter per dump, all dumps in parallel.
func (in *ingester) buildFilters(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := range in.files {
		g.Go(func() error { return in.fillFilter(gctx, i) })
	}
	return g.Wait()
}

func (in *ingester) fillFilter(ctx context.Context, idx int) error {
	filter := bloom.NewWithEstimates(in.capacity, in.fpr)

	var seen uint64
	err := scanCodes(ctx, in.files[idx], func(code string) {
		filter.AddString(code)
		if seen++; seen%progressEvery == 0 {
			slog.Info("filter progress", slog.Int("file", idx+1), slog.Uint64("codes", seen))
		}
	})
	if err != nil {
		return errors.Wrapf(err, "fill filter for file %d", idx+1)
	}

	slog.Info("filter built", slog.Int("file", idx+1), slog.Uint64("codes", seen))

	in.filters[idx] = filter
	return nil
}

// validCodes keeps the codes present in two or more dumps. Each dump
// contributes a membership mask per code carrying its own bit; the masks are
// folded together and a code survives when at least two bits are set, so a
// code confined to one dump is dropped no matter how often it repeats there.
func (in *ingester) validCodes(ctx context.Context) ([]string, error) {
	perFile := make([]map[string]uint, len(in.files))

	g, gctx := errgroup.WithContext(ctx)
	for i := range in.files {
		g.Go(func() error {
			matched, err := in.matchOtherDumps(gctx, i)
			if err != nil {
				return err
			}
			perFile[i] = matched
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	membership := make(map[string]uint)
	for _, matched := range perFile {
		for code, mask := range matched {
			membership[code] |= mask
		}
	}

	valid := make([]string, 0, len(membership))
	for code, mask := range membership {
		if bits.OnesCount(mask) >= 2 {
			valid = append(valid, code)
		}
	}
	return valid, nil
}

// matchOtherDumps streams dump idx and keeps every code that a filter built
// from a different dump reports as present.
func (in *ingester) matchOtherDumps(ctx context.Context, idx int) (map[string]uint, error) {
	matched := make(map[string]uint)
	bit := uint(1) << uint(idx)

	var seen uint64
	err := scanCodes(ctx, in.files[idx], func(code string) {
		if seen++; seen%progressEvery == 0 {
			slog.Info("match progress", slog.Int("file", idx+1), slog.Uint64("codes", seen))
		}
		for other, f := range in.filters {
			if other != idx && f.TestString(code) {
				matched[code] |= bit
				break
			}
		}
	})
	if err != nil {
		return nil, errors.Wrapf(err, "match codes in file %d", idx+1)
	}

	slog.Info("matching done",
		slog.Int("file", idx+1),
		slog.Uint64("codes", seen),
		slog.Int("matched", len(matched)),
	)
	return matched, nil
}

// scanCodes reads a gzipped dump line by line, calling fn for every line
// whose length falls inside the accepted code range.
func scanCodes(ctx context.Context, path string, fn func(code string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	sc := bufio.NewScanner(gz)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if line := sc.Text(); len(line) >= minCodeLen && len(line) <= maxCodeLen {
			fn(line)
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}

// writeOffers inserts all valid codes as store-wide percentage offers.
// Codes already present are skipped.
func writeOffers(
	ctx context.Context,
	offers offer.Repository,
	codes []string,
	ownerID int64,
	value decimal.Decimal,
	expiresAt time.Time,
) error {
	slog.Info("writing offers to database", slog.Int("count", len(codes)))

	var written, skipped int
	for i, code := range codes {
		o := &offer.Offer{
			Code:          code,
			DiscountValue: value,
			IsPercentage:  true,
			ExpiresAt:     expiresAt,
			OwnerID:       ownerID,
		}
		switch err := offers.Create(ctx, o); {
		case err == nil:
			written++
		case errors.Is(err, offer.ErrCodeTaken):
			skipped++
		default:
			return errors.Wrapf(err, "create offer %s", code)
		}

		if (i+1)%100 == 0 || i+1 == len(codes) {
			slog.Info("write progress",
				slog.Int("written", written),
				slog.Int("skipped", skipped),
				slog.Int("total", len(codes)),
			)
		}
	}

	return nil
}
