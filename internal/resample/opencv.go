//go:build opencv

package resample

import (
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// opencvResampler runs cv::resize with INTER_AREA, which is the OpenCV
// recommendation for downscaling. Conversion failures fall back to
// Lanczos so a preview is never lost to a Mat error.
type opencvResampler struct{}

func init() {
	Register("opencv", func() Resampler { return opencvResampler{} })
}

func (opencvResampler) Resize(img image.Image, width, height int) *image.NRGBA {
	src, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return imaging.Resize(img, width, height, imaging.Lanczos)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	gocv.Resize(src, &dst, image.Point{X: width, Y: height}, 0, 0, gocv.InterpolationArea)

	out, err := dst.ToImage()
	if err != nil {
		return imaging.Resize(img, width, height, imaging.Lanczos)
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(nrgba, nrgba.Bounds(), out, out.Bounds().Min, draw.Src)
	return nrgba
}

func (opencvResampler) Name() string {
	return "opencv"
}
