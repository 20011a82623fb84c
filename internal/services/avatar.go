package services

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image/color"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"

	"github.com/yungbote/ndtmaster-backend/internal/domain/account"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
)

type AvatarService interface {
	// GenerateAvatar renders a round initials avatar as PNG.
	GenerateAvatar(p account.Profile) ([]byte, error)
}

const avatarSize = 256

var avatarPalette = []color.NRGBA{
	{R: 0x25, G: 0x63, B: 0xEB, A: 0xFF},
	{R: 0x0E, G: 0x74, B: 0x90, A: 0xFF},
	{R: 0x7C, G: 0x3A, B: 0xED, A: 0xFF},
	{R: 0xDB, G: 0x27, B: 0x77, A: 0xFF},
	{R: 0xEA, G: 0x58, B: 0x0C, A: 0xFF},
	{R: 0x16, G: 0xA3, B: 0x4A, A: 0xFF},
}

type avatarService struct {
	log      *logger.Logger
	fontFace font.Face
}

// NewAvatarService uses the font at fontPath, or the bundled Go Bold face
// when fontPath is empty.
func NewAvatarService(log *logger.Logger, fontPath string) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	raw := gobold.TTF
	if p := strings.TrimSpace(fontPath); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
		raw = b
		serviceLog.Info("Loading avatar font", "font", p)
	}
	face, err := loadFontFace(raw, avatarSize*0.4)
	if err != nil {
		return nil, fmt.Errorf("could not load avatar font: %w", err)
	}
	return &avatarService{log: serviceLog, fontFace: face}, nil
}

func (as *avatarService) GenerateAvatar(p account.Profile) ([]byte, error) {
	const size = avatarSize
	dc := gg.NewContext(size, size)

	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()

	dc.SetColor(pickAvatarColor(p.Name))
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	dc.SetFontFace(as.fontFace)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(p.Initials(), float64(size)/2, float64(size)/2, 0.5, 0.35)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// pickAvatarColor is stable per name so the header avatar does not flicker
// between requests.
func pickAvatarColor(name string) color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(name))))
	return avatarPalette[h.Sum32()%uint32(len(avatarPalette))]
}

func loadFontFace(raw []byte, size float64) (font.Face, error) {
	parsedFont, err := truetype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
