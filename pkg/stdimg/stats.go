package stdimg

import (
	"image"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ChannelStats holds the per-channel (R, G, B) mean and sample standard
// deviation of the visible pixels of an image. Count is the number of pixels
// with a non-zero alpha that contributed.
type ChannelStats struct {
	Mean  [3]float64
	Std   [3]float64
	Count int
}

// levels are the 256 possible 8-bit channel values, used as the sample
// points when a histogram is reduced with frequency weights.
var levels = func() []float64 {
	l := make([]float64, 256)
	for i := range l {
		l[i] = float64(i)
	}
	return l
}()

// ChannelHistogram counts the R, G and B values of every pixel with a
// non-zero alpha. Fully transparent pixels are skipped entirely. The counts
// are float64 so they can be fed to gonum as weights.
func ChannelHistogram(src *image.NRGBA) (hist [3][256]float64, count int) {
	if src == nil {
		return hist, 0
	}
	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := src.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			if src.Pix[i+3] > 0 {
				hist[0][src.Pix[i+0]]++
				hist[1][src.Pix[i+1]]++
				hist[2][src.Pix[i+2]]++
				count++
			}
			i += 4
		}
	}
	return hist, count
}

// ComputeChannelStats returns the mean and the sample standard deviation
// (N-1 denominator) of each colour channel over the visible pixels of src.
// With fewer than two visible pixels the deviation is zero; with none the
// mean is zero as well.
func ComputeChannelStats(src *image.NRGBA) ChannelStats {
	hist, count := ChannelHistogram(src)
	st := ChannelStats{Count: count}
	if count == 0 {
		return st
	}
	for c := 0; c < 3; c++ {
		if count == 1 {
			st.Mean[c] = stat.Mean(levels, hist[c][:])
			continue
		}
		mean, std := stat.MeanStdDev(levels, hist[c][:])
		if math.IsNaN(std) {
			std = 0
		}
		st.Mean[c] = mean
		st.Std[c] = std
	}
	return st
}
