package paramdex

import (
	"github.com/scigolib/paramdex/internal/bnd4"
	"github.com/scigolib/paramdex/internal/cipher"
	"github.com/scigolib/paramdex/internal/dcx"
	"github.com/scigolib/paramdex/internal/param"
	"github.com/scigolib/paramdex/internal/utils"
)

// Regulation is a fully opened regulation archive: cipher, decompression,
// and BND4 parsing already applied, exposing the embedded PARAM files
// directly (§4.1–§4.5, SPEC_FULL §C.1).
type Regulation struct {
	Archive *bnd4.Archive
}

// Open decrypts data per game's cipher profile (§4.3), transparently
// decompresses a DCX/DCP envelope if present, and parses the result as a
// BND4 archive. If data already begins with the BND4 magic, decryption is
// skipped entirely (§4.3 "short-circuit").
func Open(game Game, data []byte) (*Regulation, error) {
	plain := data
	if !bnd4.Is(data) {
		decrypted, err := decryptFor(game, data)
		if err != nil {
			return nil, utils.WrapError("regulation: decrypt", err)
		}
		plain = decrypted
	}

	if dcx.HasEnvelope(plain) {
		decompressed, err := dcx.Decompress(plain)
		if err != nil {
			return nil, utils.WrapError("regulation: decompress", err)
		}
		plain = decompressed
	}

	archive, err := bnd4.Read(plain)
	if err != nil {
		return nil, utils.WrapError("regulation: bnd4", err)
	}
	return &Regulation{Archive: archive}, nil
}

func decryptFor(game Game, data []byte) ([]byte, error) {
	switch game {
	case DS2:
		return cipher.DecryptDS2(data)
	case DS3:
		return cipher.DecryptDS3(data)
	case ER:
		return cipher.DecryptER(data)
	default:
		return nil, utils.InvalidDataf("regulation: game", "unrecognized game tag %d", game)
	}
}

// Files returns every embedded file's name, in archive order. Entries whose
// archive carries no FormatNames flag report an empty name.
func (r *Regulation) Files() []string {
	names := make([]string, len(r.Archive.Files))
	for i, f := range r.Archive.Files {
		names[i] = f.Name
	}
	return names
}

// Param locates the embedded file named name, transparently decompressing
// a per-file DCX envelope (regulations frequently compress individual
// PARAM entries independently of the outer archive), and parses it as a
// PARAM table (§4.5).
func (r *Regulation) Param(name string) (*param.Table, error) {
	for _, f := range r.Archive.Files {
		if f.Name != name {
			continue
		}
		raw := f.Data
		if dcx.HasEnvelope(raw) {
			decompressed, err := dcx.Decompress(raw)
			if err != nil {
				return nil, utils.WrapError("regulation: param decompress", err)
			}
			raw = decompressed
		}
		table, err := param.Read(raw)
		if err != nil {
			return nil, utils.WrapError("regulation: param", err)
		}
		return table, nil
	}
	return nil, utils.InvalidDataf("regulation: param", "no embedded file named %q", name)
}
