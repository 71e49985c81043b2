// Package journalexport copies game journal entries into a Parquet file for
// offline analysis.
package journalexport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/sho/internal/services/sho/storage"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

// Record is one journal entry as a Parquet row.
type Record struct {
	ID       string  `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	GameID   string  `parquet:"name=game_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Seq      int64   `parquet:"name=seq, type=INT64"`
	Kind     string  `parquet:"name=kind, type=BYTE_ARRAY, convertedtype=UTF8"`
	Seat     int32   `parquet:"name=seat, type=INT32"`
	Turn     int32   `parquet:"name=turn, type=INT32"`
	Die1     int32   `parquet:"name=die1, type=INT32"`
	Die2     int32   `parquet:"name=die2, type=INT32"`
	Source   int32   `parquet:"name=source, type=INT32"`
	Target   int32   `parquet:"name=target, type=INT32"`
	MoveType string  `parquet:"name=move_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	Pool     []int32 `parquet:"name=pool, type=LIST, valuetype=INT32"`
	Phase    string  `parquet:"name=phase, type=BYTE_ARRAY, convertedtype=UTF8"`
	Code     string  `parquet:"name=code, type=BYTE_ARRAY, convertedtype=UTF8"`
	Detail   string  `parquet:"name=detail, type=BYTE_ARRAY, convertedtype=UTF8"`
	// AtMillis is the entry time in Unix milliseconds.
	AtMillis int64 `parquet:"name=at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
}

// NewRecord converts a journal entry.
func NewRecord(entry storage.Entry) Record {
	pool := make([]int32, 0, len(entry.Pool))
	for _, value := range entry.Pool {
		pool = append(pool, int32(value))
	}
	return Record{
		ID:       entry.ID,
		GameID:   entry.GameID,
		Seq:      entry.Seq,
		Kind:     string(entry.Kind),
		Seat:     int32(entry.Seat),
		Turn:     int32(entry.Turn),
		Die1:     int32(entry.Die1),
		Die2:     int32(entry.Die2),
		Source:   int32(entry.Source),
		Target:   int32(entry.Target),
		MoveType: entry.MoveType,
		Pool:     pool,
		Phase:    entry.Phase,
		Code:     entry.Code,
		Detail:   entry.Detail,
		AtMillis: entry.At.UTC().UnixMilli(),
	}
}

// At returns the entry time.
func (r Record) At() time.Time {
	return time.UnixMilli(r.AtMillis).UTC()
}

// Options selects what to export.
type Options struct {
	// GameIDs limits the export; every journaled game is exported when empty.
	GameIDs []string
	// Filter is an AIP-160 expression applied to each game's entries.
	Filter string
	// Parallel is the writer's goroutine count.
	Parallel int64
}

// Export writes the selected entries to path and returns how many rows were
// written.
func Export(ctx context.Context, journal storage.Journal, path string, opts Options) (int, error) {
	if journal == nil {
		return 0, errors.New("journal is required")
	}
	if path == "" {
		return 0, errors.New("output path is required")
	}
	parallel := opts.Parallel
	if parallel <= 0 {
		parallel = 4
	}

	gameIDs := opts.GameIDs
	if len(gameIDs) == 0 {
		listed, err := journal.ListGames(ctx)
		if err != nil {
			return 0, fmt.Errorf("list games: %w", err)
		}
		gameIDs = listed
	}

	fileWriter, err := local.NewLocalFileWriter(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	closed := false
	defer func() {
		if !closed {
			_ = fileWriter.Close()
		}
	}()

	parquetWriter, err := writer.NewParquetWriter(fileWriter, new(Record), parallel)
	if err != nil {
		return 0, fmt.Errorf("parquet writer: %w", err)
	}
	parquetWriter.CompressionType = parquet.CompressionCodec_SNAPPY

	written := 0
	for _, gameID := range gameIDs {
		pageToken := ""
		for {
			page, err := journal.ListEntries(ctx, storage.ListRequest{
				GameID:    gameID,
				Filter:    opts.Filter,
				PageSize:  storage.MaxPageSize,
				PageToken: pageToken,
			})
			if err != nil {
				return written, fmt.Errorf("list entries for %s: %w", gameID, err)
			}
			for _, entry := range page.Entries {
				if err := parquetWriter.Write(NewRecord(entry)); err != nil {
					return written, fmt.Errorf("write entry %s/%d: %w", gameID, entry.Seq, err)
				}
				written++
			}
			if page.NextPageToken == "" {
				break
			}
			pageToken = page.NextPageToken
		}
	}

	if err := parquetWriter.WriteStop(); err != nil {
		return written, fmt.Errorf("finish parquet: %w", err)
	}
	closed = true
	if err := fileWriter.Close(); err != nil {
		return written, fmt.Errorf("close %s: %w", path, err)
	}
	return written, nil
}

// ReadFile loads every record from a file written by Export.
func ReadFile(path string, parallel int64) ([]Record, error) {
	if parallel <= 0 {
		parallel = 4
	}
	fileReader, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer fileReader.Close()

	parquetReader, err := reader.NewParquetReader(fileReader, new(Record), parallel)
	if err != nil {
		return nil, fmt.Errorf("parquet reader: %w", err)
	}
	defer parquetReader.ReadStop()

	records := make([]Record, int(parquetReader.GetNumRows()))
	if len(records) == 0 {
		return records, nil
	}
	if err := parquetReader.Read(&records); err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return records, nil
}
