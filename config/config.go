package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "8MB"

	defaultMapboxBaseURL   = "https://api.mapbox.com"
	defaultMapboxTimeout   = 15 * time.Second
	defaultSearchCategory  = "restaurant"
	defaultSearchLimit     = 12
	defaultSearchUILimit   = 18
	defaultMapStyle        = "mapbox://styles/mapbox/streets-v12"
	defaultPollInterval    = 150 * time.Millisecond
	defaultPollMaxAttempts = 40
	defaultInitialZoom     = 2
	defaultFocusZoom       = 14
	defaultPlaceZoom       = 15
	defaultTileCacheSize   = 64
	defaultMaximumAge      = 10 * time.Second
	defaultLocationTimeout = 12 * time.Second
	defaultPhotoIndexKey   = "nearby_photos_v1"
	defaultBlobURL         = "mem://"
	defaultShareLinkTTL    = 24 * time.Hour
	defaultSharePageQRSize = 256
	defaultSessionTTL      = 30 * time.Minute
	defaultSessionSweep    = time.Minute

	// Pub/Sub rejects messages above 10MB.
	defaultShareMaxPayloadBytes = 10 * 1000 * 1000
)

// Storage drivers for the key-value store that holds the photo index.
const (
	StorageDriverBlob     = "blob"
	StorageDriverPostgres = "postgres"
)

// Location providers.
const (
	LocationProviderDevice = "device"
	LocationProviderFixed  = "fixed"
	LocationProviderNone   = "none"
)

// EnvDevelop is the environment name of local development.
const EnvDevelop = "develop"

// Pub/Sub providers used as the native share target.
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		// PublicBaseURL prefixes links handed out to clients (share pages).
		PublicBaseURL string `json:"publicBaseUrl" yaml:"publicBaseUrl"`
		// AllowOrigins restricts CORS; empty allows any origin.
		AllowOrigins []string `json:"allowOrigins" yaml:"allowOrigins"`
		Timeouts     struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Mapbox *MapboxConfig `json:"mapbox" yaml:"mapbox"`

	Search *SearchConfig `json:"search" yaml:"search"`

	MapLibrary *MapLibraryConfig `json:"mapLibrary" yaml:"mapLibrary"`

	Location *LocationConfig `json:"location" yaml:"location"`

	Storage *StorageConfig `json:"storage" yaml:"storage"`

	// Postgres is only required when storage.driver is "postgres".
	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	Share *ShareConfig `json:"share" yaml:"share"`

	Session *SessionConfig `json:"session" yaml:"session"`

	// PubSub configures the native share target
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`

	// Firebase configuration for pushing share pages to devices
	Firebase *FirebaseConfig `json:"firebase" yaml:"firebase"`

	// QRCode configuration for share page QR codes
	QRCode *QRCodeConfig `json:"qrcode" yaml:"qrcode"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// MapboxConfig holds the geocoding endpoint and its access token.
type MapboxConfig struct {
	BaseURL     string        `json:"baseUrl" yaml:"baseUrl"`
	AccessToken string        `json:"accessToken" yaml:"accessToken"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
}

// SearchConfig holds place search defaults
type SearchConfig struct {
	DefaultCategory string `json:"defaultCategory" yaml:"defaultCategory"`
	DefaultLimit    int    `json:"defaultLimit" yaml:"defaultLimit"`
	// UILimit is the limit used by the explorer session search
	UILimit int `json:"uiLimit" yaml:"uiLimit"`
}

// MapLibraryConfig defines the PMTiles archive backing the map and the bootstrap polling
type MapLibraryConfig struct {
	// Source is a local path, file:// URL, http(s) URL or bucket URL of a .pmtiles archive
	Source        string        `json:"source" yaml:"source"`
	Style         string        `json:"style" yaml:"style"`
	TileCacheSize int           `json:"tileCacheSize" yaml:"tileCacheSize"`
	PollInterval  time.Duration `json:"pollInterval" yaml:"pollInterval"`
	MaxAttempts   int           `json:"maxAttempts" yaml:"maxAttempts"`
	InitialCenter []float64     `json:"initialCenter" yaml:"initialCenter"`
	InitialZoom   float64       `json:"initialZoom" yaml:"initialZoom"`
	FocusZoom     float64       `json:"focusZoom" yaml:"focusZoom"`
	PlaceZoom     float64       `json:"placeZoom" yaml:"placeZoom"`
}

// LocationConfig defines how positions are acquired
type LocationConfig struct {
	Provider     string        `json:"provider" yaml:"provider"`
	HighAccuracy bool          `json:"highAccuracy" yaml:"highAccuracy"`
	MaximumAge   time.Duration `json:"maximumAge" yaml:"maximumAge"`
	Timeout      time.Duration `json:"timeout" yaml:"timeout"`
	Fixed        struct {
		Latitude  float64 `json:"latitude" yaml:"latitude"`
		Longitude float64 `json:"longitude" yaml:"longitude"`
		Accuracy  float64 `json:"accuracy" yaml:"accuracy"`
	} `json:"fixed" yaml:"fixed"`
}

// StorageConfig defines the key-value store holding the photo index and share pages
type StorageConfig struct {
	Driver        string `json:"driver" yaml:"driver"`
	BlobURL       string `json:"blobUrl" yaml:"blobUrl"`
	PhotoIndexKey string `json:"photoIndexKey" yaml:"photoIndexKey"`
}

// ShareConfig defines share link signing and payload limits
type ShareConfig struct {
	Secret          string        `json:"secret" yaml:"secret"`
	LinkTTL         time.Duration `json:"linkTtl" yaml:"linkTtl"`
	MaxPayloadBytes int           `json:"maxPayloadBytes" yaml:"maxPayloadBytes"`
}

// SessionConfig defines explorer session expiry
type SessionConfig struct {
	TTL           time.Duration `json:"ttl" yaml:"ttl"`
	SweepInterval time.Duration `json:"sweepInterval" yaml:"sweepInterval"`
}

// PubSubConfig defines Pub/Sub configuration for native sharing
type PubSubConfig struct {
	// Provider type: "local" for local HTTP or "google" for Google Pub/Sub
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// FirebaseConfig defines Firebase configuration for push notifications
type FirebaseConfig struct {
	ProjectID       string `json:"projectId" yaml:"projectId"`
	CredentialsPath string `json:"credentialsPath" yaml:"credentialsPath"`
}

// QRCodeConfig defines QR code generation configuration
type QRCodeConfig struct {
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	var configFile string
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate

			break
		}
	}

	if configFile == "" {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// MAPBOX_ACCESSTOKEN -> mapbox.accessToken
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			return canonicalizeEnvKey(k, existingConfigMap), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()

	if cfg.Postgres != nil {
		// POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, ...
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	return cfg, nil
}

// ApplyDefaults fills every unset section and field with its default value.
func (cfg *Config) ApplyDefaults() {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	if cfg.Mapbox == nil {
		cfg.Mapbox = &MapboxConfig{}
	}
	if cfg.Mapbox.BaseURL == "" {
		cfg.Mapbox.BaseURL = defaultMapboxBaseURL
	}
	if cfg.Mapbox.Timeout <= 0 {
		cfg.Mapbox.Timeout = defaultMapboxTimeout
	}

	if cfg.Search == nil {
		cfg.Search = &SearchConfig{}
	}
	if cfg.Search.DefaultCategory == "" {
		cfg.Search.DefaultCategory = defaultSearchCategory
	}
	if cfg.Search.DefaultLimit <= 0 {
		cfg.Search.DefaultLimit = defaultSearchLimit
	}
	if cfg.Search.UILimit <= 0 {
		cfg.Search.UILimit = defaultSearchUILimit
	}

	cfg.applyMapLibraryDefaults()

	if cfg.Location == nil {
		cfg.Location = &LocationConfig{Provider: LocationProviderDevice, HighAccuracy: true}
	}
	if cfg.Location.Provider == "" {
		cfg.Location.Provider = LocationProviderDevice
	}
	if cfg.Location.MaximumAge <= 0 {
		cfg.Location.MaximumAge = defaultMaximumAge
	}
	if cfg.Location.Timeout <= 0 {
		cfg.Location.Timeout = defaultLocationTimeout
	}

	if cfg.Storage == nil {
		cfg.Storage = &StorageConfig{}
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageDriverBlob
	}
	if cfg.Storage.BlobURL == "" {
		cfg.Storage.BlobURL = defaultBlobURL
	}
	if cfg.Storage.PhotoIndexKey == "" {
		cfg.Storage.PhotoIndexKey = defaultPhotoIndexKey
	}

	if cfg.Share == nil {
		cfg.Share = &ShareConfig{}
	}
	if cfg.Share.LinkTTL <= 0 {
		cfg.Share.LinkTTL = defaultShareLinkTTL
	}
	if cfg.Share.MaxPayloadBytes <= 0 {
		cfg.Share.MaxPayloadBytes = defaultShareMaxPayloadBytes
	}

	if cfg.Session == nil {
		cfg.Session = &SessionConfig{}
	}
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = defaultSessionTTL
	}
	if cfg.Session.SweepInterval <= 0 {
		cfg.Session.SweepInterval = defaultSessionSweep
	}

	if cfg.QRCode == nil {
		cfg.QRCode = &QRCodeConfig{}
	}
	if cfg.QRCode.Size <= 0 {
		cfg.QRCode.Size = defaultSharePageQRSize
	}
	if cfg.QRCode.ErrorCorrectionLevel == "" {
		cfg.QRCode.ErrorCorrectionLevel = "M"
	}
}

func (cfg *Config) applyMapLibraryDefaults() {
	if cfg.MapLibrary == nil {
		cfg.MapLibrary = &MapLibraryConfig{}
	}
	lib := cfg.MapLibrary
	if lib.Style == "" {
		lib.Style = defaultMapStyle
	}
	if lib.TileCacheSize <= 0 {
		lib.TileCacheSize = defaultTileCacheSize
	}
	if lib.PollInterval <= 0 {
		lib.PollInterval = defaultPollInterval
	}
	if lib.MaxAttempts <= 0 {
		lib.MaxAttempts = defaultPollMaxAttempts
	}
	if len(lib.InitialCenter) != 2 {
		lib.InitialCenter = []float64{0, 20}
	}
	if lib.InitialZoom <= 0 {
		lib.InitialZoom = defaultInitialZoom
	}
	if lib.FocusZoom <= 0 {
		lib.FocusZoom = defaultFocusZoom
	}
	if lib.PlaceZoom <= 0 {
		lib.PlaceZoom = defaultPlaceZoom
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv builds read replicas from POSTGRES_REPLICAS_{index}_{HOST,PORT,USERNAME,PASSWORD}.
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			break
		}

		replicas = append(replicas, postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		})
	}

	return replicas
}
