package container

import (
	"errors"
	"fmt"
)

// Magic opens every LYRD file.
const Magic = "LYRD"

// Version is the format version written by Encode.
const Version uint16 = 1

const headerSize = 8

// Codec selects how a channel block is stored.
type Codec string

const (
	CodecRaw Codec = "raw"
	CodecZip Codec = "zip"
	// CodecJ2K stores 3-channel color losslessly as a JPEG 2000 codestream.
	// Blocks with alpha, masks, and blocks the codestream does not restore
	// exactly fall back to CodecZip.
	CodecJ2K Codec = "j2k"
)

var (
	// ErrBadMagic is returned for data that does not start with Magic.
	ErrBadMagic = errors.New("container: not a LYRD file")

	// ErrUnsupportedVersion is returned for files newer than Version.
	ErrUnsupportedVersion = errors.New("container: unsupported version")

	// ErrCorrupt is returned when the manifest or a block is malformed.
	ErrCorrupt = errors.New("container: corrupt data")

	// ErrUnknownCodec is returned for a block codec this package cannot read.
	ErrUnknownCodec = errors.New("container: unknown codec")
)

// BlockError reports a block that failed to decode.
type BlockError struct {
	LayerID int
	Channel string
	Err     error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("container: layer %d %s block: %v", e.LayerID, e.Channel, e.Err)
}

func (e *BlockError) Unwrap() error { return e.Err }

// manifest is the JSON document describing the layer tree.
type manifest struct {
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Layers []manifestNode `json:"layers"`
}

type rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type blockRef struct {
	Offset   int64 `json:"offset"`
	Length   int64 `json:"length"`
	Codec    Codec `json:"codec"`
	Width    int   `json:"width"`
	Height   int   `json:"height"`
	Channels int   `json:"channels"`
}

type layerMaskRef struct {
	Block        blockRef `json:"block"`
	Rect         rect     `json:"rect"`
	DefaultColor uint8    `json:"defaultColor"`
}

type runEntry struct {
	Text         string  `json:"text"`
	Font         string  `json:"font,omitempty"`
	OriginalFont string  `json:"originalFont,omitempty"`
	FontSize     float64 `json:"fontSize,omitempty"`
	Color        string  `json:"color"`
}

type hintEntry struct {
	ID         string   `json:"id,omitempty"`
	Type       int      `json:"type"`
	Name       string   `json:"name,omitempty"`
	Native     int      `json:"native,omitempty"`
	Visible    bool     `json:"visible"`
	Properties []string `json:"properties,omitempty"`
}

type manifestNode struct {
	ID          int     `json:"id"`
	Name        string  `json:"name,omitempty"`
	Group       bool    `json:"group,omitempty"`
	ItemType    string  `json:"itemType"`
	Visible     bool    `json:"visible"`
	Opacity     float64 `json:"opacity"`
	FillOpacity float64 `json:"fillOpacity"`
	BlendMode   string  `json:"blendMode"`
	Rect        rect    `json:"rect"`

	Pixels           *blockRef     `json:"pixels,omitempty"`
	TransparencyMask *blockRef     `json:"transparencyMask,omitempty"`
	LayerMask        *layerMaskRef `json:"layerMask,omitempty"`

	Runs      []runEntry `json:"runs,omitempty"`
	Alignment string     `json:"alignment,omitempty"`

	BrushColor   string     `json:"brushColor,omitempty"`
	PathType     string     `json:"pathType,omitempty"`
	CornerRadius float64    `json:"cornerRadius,omitempty"`
	Opened       bool       `json:"opened,omitempty"`
	LinkedFile   string     `json:"linkedFile,omitempty"`
	Hint         *hintEntry `json:"hint,omitempty"`

	Children []manifestNode `json:"children,omitempty"`
}
