package bootstrap

import (
	"github.com/eleven-am/voice-recognizer/internal/lexicon"
	"github.com/eleven-am/voice-recognizer/internal/transcript"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideLexiconStore(db *gorm.DB) *lexicon.Store {
	return lexicon.NewStore(db)
}

func ProvideTranscriptStore(redisClient *redis.Client, cfg *Config) *transcript.Store {
	return transcript.NewStore(redisClient, cfg.TranscriptTTL)
}

func RunMigrations(lexiconStore *lexicon.Store) error {
	return lexiconStore.Migrate()
}

var StoresModule = fx.Options(
	fx.Provide(
		ProvideLexiconStore,
		ProvideTranscriptStore,
	),
	fx.Invoke(RunMigrations),
)
