package resample

import (
	"image"

	"github.com/disintegration/imaging"
)

type filterResampler struct {
	name   string
	filter imaging.ResampleFilter
}

func init() {
	for name, filter := range map[string]imaging.ResampleFilter{
		"lanczos":    imaging.Lanczos,
		"catmullrom": imaging.CatmullRom,
		"linear":     imaging.Linear,
		"box":        imaging.Box,
		"nearest":    imaging.NearestNeighbor,
	} {
		r := &filterResampler{name: name, filter: filter}
		Register(name, func() Resampler { return r })
	}
}

func (f *filterResampler) Resize(img image.Image, width, height int) *image.NRGBA {
	return imaging.Resize(img, width, height, f.filter)
}

func (f *filterResampler) Name() string {
	return f.name
}
