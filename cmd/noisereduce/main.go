package main

import (
	"context"
	"fmt"
	"math/bits"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/datacounter"
	"github.com/xaionaro-go/noisereduce/pkg/noisereduce"
	"github.com/xaionaro-go/noisereduce/pkg/noisereduce/classify"
	"github.com/xaionaro-go/noisereduce/pkg/noisereduce/window"
	"github.com/xaionaro-go/noisereduce/pkg/track"
	"github.com/xaionaro-go/noisereduce/pkg/track/file"
	"github.com/xaionaro-go/noisereduce/pkg/track/live"
	"github.com/xaionaro-go/noisereduce/pkg/track/memory"
	"github.com/xaionaro-go/observability"

	_ "github.com/xaionaro-go/noisereduce/pkg/audio/backends/oto"
)

func main() {
	loggerLevel := logger.LevelInfo
	pflag.Var(&loggerLevel, "log-level", "log level")

	netPprofAddr := pflag.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	outputPath := pflag.String("output", "", "output WAV path (required)")

	profilePath := pflag.String("profile-file", "", "file containing only background noise (defaults to the input file)")
	profileStart := pflag.Duration("profile-start", 0, "start of the noise profile region")
	profileEnd := pflag.Duration("profile-end", 0, "end of the noise profile region (default: end of profile file)")

	reduceStart := pflag.Duration("reduce-start", 0, "start of the region to clean (default: start of input)")
	reduceEnd := pflag.Duration("reduce-end", 0, "end of the region to clean (default: end of input)")

	sensitivity := pflag.Float64("sensitivity", 6.0, "sigma: base-10 log of the allowed noise-above-threshold probability")
	gainDB := pflag.Float64("gain", 12.0, "attenuation applied to bands judged to be noise, in dB")
	attackTime := pflag.Float64("attack", 0.02, "attack time in seconds")
	releaseTime := pflag.Float64("release", 0.10, "release time in seconds")
	freqSmoothing := pflag.Float64("freq-smoothing", 3.0, "frequency-smoothing half-width in bins")
	windowSize := pflag.Int("window-size", 2048, "STFT window size W in samples (power of 2)")
	stepsPerWindow := pflag.Int("steps-per-window", 4, "hops per window S (power of 2)")

	windowType := window.HannHann
	pflag.Var(&windowType, "window-type", "analysis/synthesis window pair")
	method := classify.SecondGreatest
	pflag.Var(&method, "method", "classification method")
	reductionChoice := noisereduce.ReductionReduce
	pflag.Var(&reductionChoice, "reduction-choice", "reduce, isolate, or residue")

	play := pflag.Bool("play", false, "play the cleaned output after reducing")

	pflag.Parse()

	if pflag.NArg() != 1 {
		panic(fmt.Errorf("expected exactly one positional argument: <input-file>"))
	}
	if *outputPath == "" {
		panic(fmt.Errorf("--output is required"))
	}
	inputPath := pflag.Arg(0)

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger { return l }
	defer belt.Flush(ctx)

	if *netPprofAddr != "" {
		observability.Go(ctx, func(ctx context.Context) { l.Error(http.ListenAndServe(*netPprofAddr, nil)) })
	}

	settings := noisereduce.NewDefaultSettings()
	settings.Sensitivity = *sensitivity
	settings.Gain = *gainDB
	settings.AttackTime = *attackTime
	settings.ReleaseTime = *releaseTime
	settings.FreqSmoothing = *freqSmoothing
	settings.WindowTypes = windowType
	settings.Method = method
	settings.ReductionChoice = reductionChoice
	settings.WindowSize = encodeLog2Minus(uint(*windowSize), 3)
	settings.StepsPerWindow = encodeLog2Minus(uint(*stepsPerWindow), 1)
	logger.Tracef(ctx, "settings: %s", spew.Sdump(settings))
	assertNoError(settings.Validate())

	inputChannels, inputRate, err := openTrackFile(inputPath)
	assertNoError(err)

	profileChannels, profileRate := inputChannels, inputRate
	if *profilePath != "" {
		profileChannels, profileRate, err = openTrackFile(*profilePath)
		assertNoError(err)
		if profileRate != inputRate {
			panic(fmt.Errorf("profile file rate %d does not match input file rate %d", profileRate, inputRate))
		}
	}

	pEnd := *profileEnd
	if pEnd == 0 {
		pEnd = profileChannels[0].EndTime()
	}
	rEnd := *reduceEnd
	if rEnd == 0 {
		rEnd = inputChannels[0].EndTime()
	}

	logger.Infof(ctx, "processing %d channel(s) at %d Hz", len(inputChannels), inputRate)

	for c, inputChannel := range inputChannels {
		effect := noisereduce.NewEffect()

		profileSrc := profileChannels[0]
		if c < len(profileChannels) {
			profileSrc = profileChannels[c]
		}

		logger.Infof(ctx, "profiling channel %d over [%v,%v)", c, *profileStart, pEnd)
		assertNoError(effect.Profile(ctx, profileSrc, *profileStart, pEnd, settings))

		sink := memory.NewEmpty(inputRate)
		logger.Infof(ctx, "reducing channel %d over [%v,%v)", c, *reduceStart, rEnd)
		assertNoError(effect.Reduce(ctx, inputChannel, sink, *reduceStart, rEnd, settings))
	}

	outFile, err := os.Create(*outputPath)
	assertNoError(err)
	defer outFile.Close()

	wc := datacounter.NewWriterCounter(outFile)
	stopProgress := make(chan struct{})
	observability.Go(ctx, func(ctx context.Context) {
		logger.Tracef(ctx, "started the output byte-count printer loop")
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for {
			select {
			case <-stopProgress:
				return
			case <-t.C:
				logger.Debugf(ctx, "written so far: %d bytes", wc.Count())
			}
		}
	})
	assertNoError(file.EncodeWAV(wc, inputRate, inputChannels))
	close(stopProgress)
	logger.Infof(ctx, "wrote %d bytes to %s", wc.Count(), *outputPath)

	if *play {
		logger.Infof(ctx, "playing back channel 0")
		assertNoError(live.Play(ctx, inputChannels[0]))
	}
}

func openTrackFile(path string) ([]track.Source, int, error) {
	if strings.ToLower(filepath.Ext(path)) == ".ogg" {
		return file.OpenOGG(path)
	}
	return file.OpenWAV(path)
}

// encodeLog2Minus converts a natural value (e.g. W=2048 or S=4) into the
// original's log2-minus-k persisted encoding.
func encodeLog2Minus(value uint, k int) int {
	return bits.Len(value) - 1 - k
}

func assertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
