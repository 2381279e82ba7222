package benchmarks

import (
	"os"
	"path"
	"runtime"
	"runtime/pprof"
)

// startProfiling starts the profiles requested by the flags, the returned
// function stops them and writes the heap profile
func startProfiling() func() {
	stops := make([]func(), 0)
	if cpuprofile != "" {
		cpuProfPath := path.Join(saveFile, cpuprofile)
		logger.Info("profiling CPU", "path", cpuProfPath)
		os.MkdirAll(saveFile, 0777)
		f, err := os.Create(cpuProfPath)
		if err != nil {
			logger.Fatal("could not create CPU profile", "err", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Fatal("could not start CPU profile", "err", err)
		}
		stops = append(stops, func() {
			pprof.StopCPUProfile()
			f.Close()
		})
	}

	if memprofile != "" {
		memProfPath := path.Join(saveFile, memprofile)
		stops = append(stops, func() {
			logger.Info("profiling memory", "path", memProfPath)
			f, err := os.Create(memProfPath)
			if err != nil {
				logger.Error("could not create memory profile", "err", err)
				return
			}
			defer f.Close()
			runtime.GC() // get up-to-date statistics
			if err := pprof.WriteHeapProfile(f); err != nil {
				logger.Error("could not write memory profile", "err", err)
			}
		})
	}
	return func() {
		for _, stop := range stops {
			stop()
		}
	}
}
