package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/domain/offer"
)

func writeDump(t *testing.T, dir, name string, lines []string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)

	gz := pgzip.NewWriter(f)
	_, err = gz.Write([]byte(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	return path
}

func TestIngesterKeepsCrossFileCodes(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeDump(t, dir, "offerbase1.gz", []string{"SHARED123", "ALSOHERE9", "ONLYONE99"}),
		writeDump(t, dir, "offerbase2.gz", []string{"SHARED123", "LONELY888"}),
		writeDump(t, dir, "offerbase3.gz", []string{"ALSOHERE9", "SHARED123"}),
	}

	in := newIngester(files)
	in.capacity = 1000

	ctx := context.Background()
	require.NoError(t, in.buildFilters(ctx))

	valid, err := in.validCodes(ctx)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"SHARED123", "ALSOHERE9"}, valid)
}

func TestIngesterIgnoresSingleFileRepeats(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeDump(t, dir, "offerbase1.gz", []string{"REPEATED9", "REPEATED9", "REPEATED9"}),
		writeDump(t, dir, "offerbase2.gz", []string{"ELSEWHERE"}),
	}

	in := newIngester(files)
	in.capacity = 1000

	ctx := context.Background()
	require.NoError(t, in.buildFilters(ctx))

	valid, err := in.validCodes(ctx)
	require.NoError(t, err)

	assert.Empty(t, valid)
}

func TestScanCodesFiltersLength(t *testing.T) {
	dir := t.TempDir()
	path := writeDump(t, dir, "dump.gz", []string{
		"SHORT",       // 5, below minimum
		"EXACTLY8",    // 8, kept
		"TENCHARS10",  // 10, kept
		"ELEVENCHARS", // 11, above maximum
		"",
	})

	var got []string
	err := scanCodes(context.Background(), path, func(code string) {
		got = append(got, code)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"EXACTLY8", "TENCHARS10"}, got)
}

func TestScanCodesStopsOnCanceledContext(t *testing.T) {
	dir := t.TempDir()
	path := writeDump(t, dir, "dump.gz", []string{"EXACTLY8"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := scanCodes(ctx, path, func(string) {
		t.Fatal("callback invoked after cancellation")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingOfferRepo struct {
	offer.Repository

	existing map[string]bool
	created  []*offer.Offer
}

func (r *recordingOfferRepo) Create(_ context.Context, o *offer.Offer) error {
	if r.existing[o.Code] {
		return offer.ErrCodeTaken
	}
	r.created = append(r.created, o)
	return nil
}

func TestWriteOffersSkipsExistingCodes(t *testing.T) {
	repo := &recordingOfferRepo{existing: map[string]bool{"TAKEN1234": true}}
	expiresAt := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	err := writeOffers(context.Background(), repo,
		[]string{"TAKEN1234", "FRESH1234"}, 7, decimal.NewFromInt(10), expiresAt)
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	got := repo.created[0]
	assert.Equal(t, "FRESH1234", got.Code)
	assert.True(t, got.IsPercentage)
	assert.Equal(t, int64(7), got.OwnerID)
	assert.True(t, expiresAt.Equal(got.ExpiresAt))
}
