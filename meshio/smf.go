package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/exuberant/mdenoise"
)

// ReadSMF reads an SMF mesh: "v" vertex records and "t" (or "f") triangle
// records with 1-based indices. There is no SMF writer.
func ReadSMF(r io.Reader) (mdenoise.Mesh, error) {
	var m mdenoise.Mesh
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return mdenoise.Mesh{}, fmt.Errorf("smf line %d: %w", line, err)
			}
			m.Vertices = append(m.Vertices, v)
		case "t", "f":
			if len(fields) != 4 {
				return mdenoise.Mesh{}, fmt.Errorf("smf line %d: only triangular faces are supported", line)
			}
			var f [3]int
			for i, tok := range fields[1:] {
				idx, err := strconv.Atoi(tok)
				if err != nil || idx < 1 {
					return mdenoise.Mesh{}, fmt.Errorf("smf line %d: bad face index %q", line, tok)
				}
				f[i] = idx - 1
			}
			m.Faces = append(m.Faces, f)
		}
	}
	if err := sc.Err(); err != nil {
		return mdenoise.Mesh{}, err
	}
	if err := m.Validate(); err != nil {
		return mdenoise.Mesh{}, err
	}
	return m, nil
}
