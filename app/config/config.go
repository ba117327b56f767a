package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"
)

const (
	StorageBadger = "badger"
	StorageMemory = "memory"
	StorageMongo  = "mongo"
)

type Config struct {
	Addr     string
	LogLevel slog.Level
	Storage  Storage
	Identity Identity
}

type Storage struct {
	Mode          string
	DBPath        string
	PostsTable    string
	CommentsTable string
	MongoURL      string
	MongoDBName   string
	RedisURL      string
	CacheTTL      time.Duration
}

// Identity holds the trust parameters for access tokens.
type Identity struct {
	Issuer        string
	Audience      string
	JWKSURL       string
	TokenUse      string
	PublicKeyFile string
	HMACSecret    string
}

func Load() Config {
	addr := envString("BLOG_ADDR", "")
	if addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		} else {
			addr = ":8080"
		}
	}
	cfg := Config{
		Addr:     addr,
		LogLevel: envLevel("BLOG_LOG_LEVEL", slog.LevelInfo),
		Storage: Storage{
			Mode:          strings.ToLower(envString("BLOG_STORAGE", StorageBadger)),
			DBPath:        envString("BLOG_DB_PATH", "data/badger"),
			PostsTable:    envString("POSTS_TABLE_NAME", "posts"),
			CommentsTable: envString("COMMENTS_TABLE_NAME", "comments"),
			MongoURL:      envString("MONGO_URL", ""),
			MongoDBName:   envString("MONGO_DBNAME", "blog"),
			RedisURL:      envString("REDIS_URL", ""),
			CacheTTL:      envDuration("BLOG_CACHE_TTL", time.Hour),
		},
		Identity: loadIdentity(),
	}
	return cfg
}

// loadIdentity reads explicit IDENTITY_* settings and falls back to the
// Cognito user pool shorthand for whatever is left unset.
func loadIdentity() Identity {
	id := Identity{
		Issuer:        envString("IDENTITY_ISSUER", ""),
		Audience:      envString("IDENTITY_AUDIENCE", ""),
		JWKSURL:       envString("IDENTITY_JWKS_URL", ""),
		TokenUse:      envString("IDENTITY_TOKEN_USE", ""),
		PublicKeyFile: envString("IDENTITY_PUBLIC_KEY_FILE", ""),
		HMACSecret:    envString("IDENTITY_HMAC_SECRET", ""),
	}
	poolID := os.Getenv("USER_POOL_ID")
	clientID := os.Getenv("USER_POOL_CLIENT_ID")
	if poolID != "" {
		if id.Issuer == "" {
			region := os.Getenv("AWS_REGION")
			if region == "" {
				region, _, _ = strings.Cut(poolID, "_")
			}
			id.Issuer = "https://cognito-idp." + region + ".amazonaws.com/" + poolID
		}
		if id.TokenUse == "" {
			id.TokenUse = "access"
		}
	}
	if id.Audience == "" {
		id.Audience = clientID
	}
	if id.JWKSURL == "" && id.Issuer != "" && id.PublicKeyFile == "" && id.HMACSecret == "" {
		id.JWKSURL = strings.TrimSuffix(id.Issuer, "/") + "/.well-known/jwks.json"
	}
	return id
}

var ErrIdentityNotConfigured = errors.New("USER_POOL_ID or USER_POOL_CLIENT_ID environment variable is not set")

func (c Config) Validate() error {
	if c.Identity.Issuer == "" || c.Identity.Audience == "" {
		return ErrIdentityNotConfigured
	}
	switch c.Storage.Mode {
	case StorageBadger, StorageMemory:
	case StorageMongo:
		if c.Storage.MongoURL == "" {
			return errors.New("MONGO_URL environment variable is not set")
		}
	default:
		return errors.New("invalid BLOG_STORAGE: " + c.Storage.Mode)
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envLevel(key string, def slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			return l
		}
	}
	return def
}
