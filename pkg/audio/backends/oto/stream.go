package oto

import (
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/xaionaro-go/noisereduce/pkg/audio/types"
)

type playStream struct {
	player *oto.Player
}

var _ types.PlayStream = (*playStream)(nil)

func newStream(player *oto.Player) *playStream {
	return &playStream{player: player}
}

func (s *playStream) Drain() error {
	for s.player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

func (s *playStream) Close() error {
	return s.player.Close()
}
