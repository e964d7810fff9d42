package blend

import (
	"testing"

	"github.com/signal-slot/psd-run/internal/image"
)

func solid(t *testing.T, w, h int, r, g, b, a byte) *image.ImageBuf {
	t.Helper()
	buf, err := image.NewImageBuf(w, h, image.FormatRGBAPremul)
	if err != nil {
		t.Fatal(err)
	}
	data := buf.Data()
	for i := 0; i < len(data); i += 4 {
		data[i], data[i+1], data[i+2], data[i+3] = r, g, b, a
	}
	return buf
}

func pixel(buf *image.ImageBuf, x, y int) [4]byte {
	r, g, b, a := buf.GetRGBA(x, y)
	return [4]byte{r, g, b, a}
}

func TestCompositeHalfOpacity(t *testing.T) {
	dst := solid(t, 4, 4, 0, 0, 0, 0)
	src := solid(t, 4, 4, 255, 0, 0, 255)

	Composite(dst, src, 0, 0, GetBlendFunc(BlendSourceOver), 0.5)

	if got := pixel(dst, 2, 2); got != [4]byte{128, 0, 0, 128} {
		t.Errorf("pixel = %v, want [128 0 0 128]", got)
	}
}

func TestCompositeClipsToDestination(t *testing.T) {
	tests := []struct {
		name      string
		x, y      int
		inside    [2]int
		outside   [2]int
		wantCover bool
	}{
		{"positive offset", 2, 1, [2]int{3, 2}, [2]int{1, 0}, true},
		{"negative offset", -3, -3, [2]int{0, 0}, [2]int{2, 2}, true},
		{"fully outside", 10, 10, [2]int{0, 0}, [2]int{3, 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := solid(t, 4, 4, 0, 0, 0, 0)
			src := solid(t, 4, 4, 0, 0, 255, 255)
			Composite(dst, src, tt.x, tt.y, nil, 1)

			covered := pixel(dst, tt.inside[0], tt.inside[1])[3] == 255
			if covered != tt.wantCover {
				t.Errorf("pixel %v covered = %v, want %v", tt.inside, covered, tt.wantCover)
			}
			if a := pixel(dst, tt.outside[0], tt.outside[1])[3]; a != 0 {
				t.Errorf("pixel %v alpha = %d, want 0", tt.outside, a)
			}
		})
	}
}

func TestCompositeZeroOpacityIsNoop(t *testing.T) {
	dst := solid(t, 2, 2, 10, 20, 30, 255)
	src := solid(t, 2, 2, 255, 255, 255, 255)
	Composite(dst, src, 0, 0, GetBlendFunc(BlendSourceOver), 0)

	if got := pixel(dst, 1, 1); got != [4]byte{10, 20, 30, 255} {
		t.Errorf("pixel = %v, want unchanged", got)
	}
}

func TestCompositeMultiplyWhiteKeepsBackdrop(t *testing.T) {
	dst := solid(t, 3, 3, 255, 0, 0, 255)
	src := solid(t, 3, 3, 255, 255, 255, 255)
	Composite(dst, src, 0, 0, GetBlendFunc(BlendMultiply), 1)

	for y := range 3 {
		for x := range 3 {
			if got := pixel(dst, x, y); got != [4]byte{255, 0, 0, 255} {
				t.Fatalf("pixel (%d,%d) = %v, want red", x, y, got)
			}
		}
	}
}

func TestScaleChannel(t *testing.T) {
	tests := []struct {
		c       byte
		opacity float64
		want    byte
	}{
		{255, 1, 255},
		{255, 0.5, 128},
		{255, 0, 0},
		{100, 0.25, 25},
		{200, 2, 200},
		{200, -1, 0},
	}
	for _, tt := range tests {
		if got := ScaleChannel(tt.c, tt.opacity); got != tt.want {
			t.Errorf("ScaleChannel(%d, %v) = %d, want %d", tt.c, tt.opacity, got, tt.want)
		}
	}
}
