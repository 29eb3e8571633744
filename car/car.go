package car

import (
	"errors"
	"fmt"
	"io"
	"strings"

	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
	gocar "github.com/ipld/go-car"
	"github.com/ipld/go-car/util"
	"github.com/multiformats/go-multicodec"

	"cpk"
)

// Write encodes a CARv1 archive, the header naming roots
// followed by every block in order
func Write(w io.Writer, roots []cid.Cid, blks ...blocks.Block) error {
	h := &gocar.CarHeader{
		Roots:   roots,
		Version: 1,
	}
	if err := gocar.WriteHeader(h, w); err != nil {
		return fmt.Errorf("write car header: %w", err)
	}

	for _, b := range blks {
		if err := util.LdWrite(w, b.Cid().Bytes(), b.RawData()); err != nil {
			return fmt.Errorf("write block %s: %w", b.Cid(), err)
		}
	}
	return nil
}

// NewRawBlock wraps data in a block addressed by a raw
// codec sha2-256 CIDv1
func NewRawBlock(data []byte) (blocks.Block, error) {
	c, err := cpk.NewCID(data, cid.Raw)
	if err != nil {
		return nil, err
	}
	return blocks.NewBlockWithCid(data, c)
}

type BlockInfo struct {
	CID   cid.Cid
	Codec multicodec.Code
	Size  int
}

type Summary struct {
	Version uint64
	Roots   []cid.Cid
	Blocks  []BlockInfo
}

func (s Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Version: %d\n", s.Version)
	fmt.Fprintf(&sb, "Roots:\n")
	for _, r := range s.Roots {
		fmt.Fprintf(&sb, "\t%s\n", r)
	}
	fmt.Fprintf(&sb, "Blocks: %d\n", len(s.Blocks))
	for _, b := range s.Blocks {
		fmt.Fprintf(&sb, "\t%s %s %d\n", b.CID, b.Codec, b.Size)
	}
	return sb.String()
}

// Inspect reads a whole CAR, go-car rejects any block whose
// data does not hash to its CID
func Inspect(r io.Reader) (Summary, error) {
	cr, err := gocar.NewCarReader(r)
	if err != nil {
		return Summary{}, fmt.Errorf("read car header: %w", err)
	}

	s := Summary{
		Version: cr.Header.Version,
		Roots:   cr.Header.Roots,
		Blocks:  make([]BlockInfo, 0),
	}
	for {
		b, err := cr.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Summary{}, fmt.Errorf("read car block %d: %w", len(s.Blocks), err)
		}
		s.Blocks = append(s.Blocks, BlockInfo{
			CID:   b.Cid(),
			Codec: multicodec.Code(b.Cid().Type()),
			Size:  len(b.RawData()),
		})
	}

	return s, nil
}

// Blocks reads every block of a CAR
func Blocks(r io.Reader) ([]cid.Cid, []blocks.Block, error) {
	cr, err := gocar.NewCarReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read car header: %w", err)
	}

	blks := make([]blocks.Block, 0)
	for {
		b, err := cr.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("read car block %d: %w", len(blks), err)
		}
		blks = append(blks, b)
	}
	return cr.Header.Roots, blks, nil
}
