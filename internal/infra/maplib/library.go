// Package maplib is the map library of explorer sessions. It is backed by a
// PMTiles archive that may show up after the service started, for example
// while a tile download is still running.
package maplib

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"nearby/config"
	domainerrors "nearby/internal/domain/errors"
	"nearby/internal/domain/service"
	"nearby/internal/errors"

	"github.com/paulmach/orb/maptile"
	"github.com/protomaps/go-pmtiles/pmtiles"
)

const pmtilesMagic = "PMTiles"

// Library implements service.MapLibrary on a PMTiles archive.
type Library struct {
	source    string
	bucketURL string
	tileset   string
	cacheSize int
	logger    *slog.Logger

	mu     sync.Mutex
	loaded bool
	server *pmtiles.Server
	ext    string
}

var _ service.MapLibrary = (*Library)(nil)

// New creates the map library for mapLibrary.source. Nothing is opened
// until Loaded is called.
func New(cfg *config.Config, logger *slog.Logger) (*Library, error) {
	lib := cfg.MapLibrary
	if lib.Source == "" {
		return nil, errors.New("mapLibrary.source is required")
	}

	bucketURL, tileset := parseSourcePath(lib.Source)

	return &Library{
		source:    lib.Source,
		bucketURL: bucketURL,
		tileset:   tileset,
		cacheSize: lib.TileCacheSize,
		logger:    logger,
	}, nil
}

// parseSourcePath extracts the bucket and tileset name from a source.
//   - "file:///data/streets.pmtiles" -> ("file:///data", "streets")
//   - "/data/streets.pmtiles" -> ("file:///data", "streets")
//   - "https://example.com/tiles/streets.pmtiles" -> ("https://example.com/tiles", "streets")
//   - "s3://maps/streets.pmtiles" -> ("s3://maps", "streets")
func parseSourcePath(source string) (bucketURL, tileset string) {
	if path, ok := strings.CutPrefix(source, "file://"); ok {
		return "file://" + filepath.Dir(path), strings.TrimSuffix(filepath.Base(path), ".pmtiles")
	}

	if strings.Contains(source, "://") {
		lastSlash := strings.LastIndex(source, "/")

		return source[:lastSlash], strings.TrimSuffix(source[lastSlash+1:], ".pmtiles")
	}

	abs, err := filepath.Abs(source)
	if err != nil {
		abs = source
	}

	return "file://" + filepath.ToSlash(filepath.Dir(abs)), strings.TrimSuffix(filepath.Base(abs), ".pmtiles")
}

// Loaded reports whether the archive is reachable and starts with the PMTiles
// magic. Once true it stays true and the tile server is running.
func (l *Library) Loaded(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded {
		return true
	}

	head, err := l.readHeaderBytes(ctx)
	if err != nil {
		l.logger.Debug("Map library not present yet", slog.String("source", l.source), slog.Any("error", err))

		return false
	}
	if string(head[:len(pmtilesMagic)]) != pmtilesMagic {
		l.logger.Debug("Map library source is not a PMTiles archive", slog.String("source", l.source))

		return false
	}

	// pmtiles requires a *log.Logger
	server, err := pmtiles.NewServer(l.bucketURL, "", log.New(io.Discard, "", 0), l.cacheSize, "")
	if err != nil {
		l.logger.Warn("Failed to create PMTiles server", slog.String("source", l.source), slog.Any("error", err))

		return false
	}
	server.Start()

	l.server = server
	l.loaded = true
	l.logger.Info("Map library loaded", slog.String("source", l.source), slog.String("tileset", l.tileset))

	return true
}

// NewMap implements service.MapLibrary. The returned map becomes ready after
// the archive header has been read.
func (l *Library) NewMap(opts service.MapOptions) (service.MapInstance, error) {
	l.mu.Lock()
	loaded := l.loaded
	l.mu.Unlock()

	if !loaded {
		return nil, errors.New("map library is not loaded")
	}
	if !opts.Center.Valid() {
		return nil, errors.Errorf("invalid map center %f, %f", opts.Center.Latitude, opts.Center.Longitude)
	}
	if opts.Zoom < 0 {
		return nil, errors.Errorf("invalid map zoom %f", opts.Zoom)
	}

	instance := newMapInstance(opts)
	go instance.load(l.readHeader)

	return instance, nil
}

// Tile implements service.MapLibrary.
func (l *Library) Tile(ctx context.Context, tile maptile.Tile) ([]byte, map[string]string, error) {
	l.mu.Lock()
	server, ext := l.server, l.ext
	l.mu.Unlock()

	if server == nil {
		return nil, nil, domainerrors.ErrMapLibraryUnavailable.WithDetails("tile archive is not loaded")
	}
	if ext == "" {
		header, err := l.readHeader(ctx)
		if err != nil {
			return nil, nil, err
		}
		ext = tileExtension(header.TileType)

		l.mu.Lock()
		l.ext = ext
		l.mu.Unlock()
	}

	path := fmt.Sprintf("/%s/%d/%d/%d.%s", l.tileset, tile.Z, tile.X, tile.Y, ext)
	status, headers, data := server.Get(ctx, path)

	switch status {
	case http.StatusOK:
		return data, headers, nil
	case http.StatusNoContent, http.StatusNotFound:
		return nil, headers, service.ErrTileNotFound
	default:
		return nil, nil, errors.Errorf("unexpected tile status %d for %s", status, path)
	}
}

func (l *Library) readHeaderBytes(ctx context.Context) ([]byte, error) {
	bucket, err := pmtiles.OpenBucket(ctx, l.bucketURL, "")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open archive bucket")
	}
	defer bucket.Close()

	reader, err := bucket.NewRangeReader(ctx, l.tileset+".pmtiles", 0, pmtiles.HeaderV3LenBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read archive header")
	}
	defer reader.Close()

	head, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read archive header")
	}
	if len(head) < pmtiles.HeaderV3LenBytes {
		return nil, errors.Errorf("archive header too short: %d bytes", len(head))
	}

	return head, nil
}

func (l *Library) readHeader(ctx context.Context) (pmtiles.HeaderV3, error) {
	head, err := l.readHeaderBytes(ctx)
	if err != nil {
		return pmtiles.HeaderV3{}, err
	}

	header, err := pmtiles.DeserializeHeader(head)
	if err != nil {
		return pmtiles.HeaderV3{}, errors.Wrap(err, "failed to deserialize archive header")
	}

	return header, nil
}

func tileExtension(tileType pmtiles.TileType) string {
	switch tileType {
	case pmtiles.Png:
		return "png"
	case pmtiles.Jpeg:
		return "jpg"
	case pmtiles.Webp:
		return "webp"
	default:
		return "mvt"
	}
}
