package tokenizer

import (
	"sync"

	tiktoken "github.com/tiktoken-go/tokenizer"
	"go.uber.org/zap"
)

var (
	mu    sync.RWMutex
	codec tiktoken.Codec
)

// Init loads the cl100k_base codec. Counting before Init loads it lazily.
func Init(log *zap.Logger) error {
	c, err := tiktoken.Get(tiktoken.Cl100kBase)
	if err != nil {
		if log != nil {
			log.Error("load tokenizer codec", zap.Error(err))
		}
		return err
	}
	mu.Lock()
	codec = c
	mu.Unlock()
	if log != nil {
		log.Info("tokenizer initialized", zap.String("codec", c.GetName()))
	}
	return nil
}

func get() (tiktoken.Codec, error) {
	mu.RLock()
	c := codec
	mu.RUnlock()
	if c != nil {
		return c, nil
	}
	if err := Init(nil); err != nil {
		return nil, err
	}
	mu.RLock()
	defer mu.RUnlock()
	return codec, nil
}

// CountTokens returns the number of tokens in text.
func CountTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	c, err := get()
	if err != nil {
		return 0, err
	}
	return c.Count(text)
}

// Estimate is CountTokens falling back to a four-characters-per-token guess.
func Estimate(text string) int {
	n, err := CountTokens(text)
	if err != nil {
		return (len(text) + 3) / 4
	}
	return n
}
