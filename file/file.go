package file

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"
)

// RunFolder names a run directory after the unix time it started.
func RunFolder(start time.Time) string {
	return strconv.FormatInt(start.Unix(), 10)
}

func GenerationDir(runDir string, generation int) string {
	return filepath.Join(runDir, strconv.Itoa(generation))
}

// GenomePath is <runDir>/<generation>/<scale>-<key>-<index>.mid
func GenomePath(runDir string, generation int, scale, key string, index int) string {
	return filepath.Join(GenerationDir(runDir, generation), fmt.Sprintf("%s-%s-%d.mid", scale, key, index))
}

// GroupByGeneration buckets exported paths by the generation directory they
// live in. Paths outside a numbered directory are skipped.
func GroupByGeneration(paths []string) map[int][]string {
	res := make(map[int][]string)
	for _, path := range paths {
		generation, err := strconv.Atoi(filepath.Base(filepath.Dir(path)))
		if err != nil {
			continue
		}
		res[generation] = append(res[generation], path)
	}
	return res
}
