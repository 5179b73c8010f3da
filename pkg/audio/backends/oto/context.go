package oto

import (
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/xaionaro-go/noisereduce/pkg/audio/types"
)

// oto initializes its device context exactly once for the process, at a
// fixed format; PlayPCM resamples into this format when the caller asks
// for something else.
const (
	SampleRate types.SampleRate = 48000
	Channels   types.Channel    = 2
	Format     types.PCMFormat = types.PCMFormatFloat32LE
	BufferSize                 = 100 * time.Millisecond
)

var (
	otoCtx     *oto.Context
	otoCtxErr  error
	otoCtxOnce sync.Once
)

func getOtoContext() (*oto.Context, error) {
	otoCtxOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   int(SampleRate),
			ChannelCount: int(Channels),
			Format:       oto.FormatFloat32LE,
			BufferSize:   BufferSize,
		})
		if err != nil {
			otoCtxErr = err
			return
		}
		<-ready
		otoCtx = ctx
	})
	return otoCtx, otoCtxErr
}
