package sdfatlas

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// toNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
// The source is never modified; NRGBA images already anchored at the origin are returned as is.
func toNRGBA(img image.Image) *image.NRGBA {
	srcBounds := img.Bounds()
	if srcBounds.Min.X == 0 && srcBounds.Min.Y == 0 {
		if src0, ok := img.(*image.NRGBA); ok {
			return src0
		}
	}
	srcMinX := srcBounds.Min.X
	srcMinY := srcBounds.Min.Y

	dstBounds := srcBounds.Sub(srcBounds.Min)
	dstW := dstBounds.Dx()
	dstH := dstBounds.Dy()

	switch src := img.(type) {
	case *image.NRGBA:
		dst := image.NewNRGBA(dstBounds)
		rowSize := dstW * 4
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			copy(dst.Pix[di:di+rowSize], src.Pix[si:si+rowSize])
		}
		return dst
	case *image.YCbCr:
		dst := image.NewNRGBA(dstBounds)
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				srcX := srcMinX + dstX
				srcY := srcMinY + dstY
				siy := src.YOffset(srcX, srcY)
				sic := src.COffset(srcX, srcY)
				r, g, b := color.YCbCrToRGB(src.Y[siy], src.Cb[sic], src.Cr[sic])
				dst.Pix[di+0] = r
				dst.Pix[di+1] = g
				dst.Pix[di+2] = b
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
		return dst
	default:
		// imaging handles the remaining models, including the premultiplied ones.
		return imaging.Clone(img)
	}
}

// blit copies src, anchored at the origin, into the rectangle of dst starting at pt.
// Both images are NRGBA, so a tile row is a single contiguous copy.
func blit(dst, src *image.NRGBA, pt image.Point) {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	rowSize := w * 4
	for y := 0; y < h; y++ {
		di := dst.PixOffset(pt.X, pt.Y+y)
		si := src.PixOffset(0, y)
		copy(dst.Pix[di:di+rowSize], src.Pix[si:si+rowSize])
	}
}
