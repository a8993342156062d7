package services

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

var cannedReplies = []string{
	"Nice try. The secret is classified. Maybe ask in a different way?",
	"I can discuss the challenge, but I cannot reveal protected values.",
	"Your prompt is clever, but hidden data is still hidden.",
	"Try probing instruction hierarchy instead of asking directly.",
	"You are getting warmer, but the protected token remains locked.",
}

// BotReply is one bot turn: the reply text and whether it leaked the secret.
type BotReply struct {
	Content         string
	DidExposeSecret bool
}

// BotService simulates the challenge chat bot. With the configured
// probability a reply exposes the secret verbatim; the economy records the
// flag either way and never acts on it.
type BotService struct {
	exposureProbability float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewBotService(exposureProbability float64) *BotService {
	return &BotService{
		exposureProbability: exposureProbability,
		rng:                 rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Reply produces the bot's turn for an attack message.
func (s *BotService) Reply(secret string) BotReply {
	s.mu.Lock()
	roll := s.rng.Float64()
	pick := s.rng.Intn(len(cannedReplies))
	s.mu.Unlock()

	if roll < s.exposureProbability {
		return BotReply{
			Content:         fmt.Sprintf("Fine, you win this round. The protected phrase is %q.", secret),
			DidExposeSecret: true,
		}
	}
	return BotReply{Content: cannedReplies[pick]}
}
