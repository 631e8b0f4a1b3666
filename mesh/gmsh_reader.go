package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/meshview/utils"
)

// gmshElementType maps Gmsh element type numbers, identical in 2.2 and 4.1
var gmshElementType = map[int]utils.ElementType{
	1:  utils.Line,
	2:  utils.Triangle,
	3:  utils.Quad,
	4:  utils.Tet,
	5:  utils.Hex,
	6:  utils.Prism,
	7:  utils.Pyramid,
	8:  utils.Line3,
	9:  utils.Triangle6,
	11: utils.Tet10,
	15: utils.Point,
}

// entityInfo holds the physical tags of a Gmsh 4 geometric entity
type entityInfo struct {
	PhysicalTags []int
}

// ReadGmshFile reads an ASCII Gmsh file in format 2.2 or 4.1
func ReadGmshFile(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadGmsh(file)
}

// ReadGmsh reads an ASCII Gmsh mesh, detecting the format version from the
// $MeshFormat section
func ReadGmsh(r io.Reader) (*Mesh, error) {
	var (
		scanner  = bufio.NewScanner(r)
		msh      = NewMesh()
		entities = make(map[int]map[int]*entityInfo)
		log      = utils.Logger()
	)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var err error
		switch line {
		case "$MeshFormat":
			err = readMeshFormat(scanner, msh)
		case "$PhysicalNames":
			err = readPhysicalNames(scanner, msh)
		case "$Entities":
			err = readEntities4(scanner, entities)
		case "$Nodes":
			if is4(msh) {
				err = readNodes4(scanner, msh)
			} else {
				err = readNodes22(scanner, msh)
			}
		case "$Elements":
			if is4(msh) {
				err = readElements4(scanner, msh, entities)
			} else {
				err = readElements22(scanner, msh)
			}
		default:
			if strings.HasPrefix(line, "$") && !strings.HasPrefix(line, "$End") {
				log.Debug("skipping gmsh section", "section", line)
				err = skipSection(scanner, "$End"+line[1:])
			}
		}
		if err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %v", err)
	}
	if msh.FormatVersion == "" {
		return nil, fmt.Errorf("could not find $MeshFormat section")
	}
	msh.BuildConnectivity()
	return msh, nil
}

func is4(msh *Mesh) bool { return strings.HasPrefix(msh.FormatVersion, "4.") }

func skipSection(scanner *bufio.Scanner, endMarker string) error {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == endMarker {
			return nil
		}
	}
	return fmt.Errorf("unexpected EOF looking for %s", endMarker)
}

// scanInts reads the next line as a list of integers
func scanInts(scanner *bufio.Scanner, what string) ([]int, error) {
	if !scanner.Scan() {
		return nil, fmt.Errorf("unexpected EOF in %s", what)
	}
	fields := strings.Fields(scanner.Text())
	vals := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid %s line %q: %v", what, scanner.Text(), err)
		}
		vals[i] = v
	}
	return vals, nil
}

func parseCoords(fields []string) ([]float64, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("invalid node coordinates %v", fields)
	}
	coords := make([]float64, 3)
	for k := 0; k < 3; k++ {
		var err error
		if coords[k], err = strconv.ParseFloat(fields[k], 64); err != nil {
			return nil, err
		}
	}
	return coords, nil
}

func readMeshFormat(scanner *bufio.Scanner, msh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in MeshFormat")
	}
	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line")
	}
	msh.FormatVersion = parts[0]
	if parts[1] != "0" {
		return fmt.Errorf("binary Gmsh files are not supported")
	}
	if !strings.HasPrefix(parts[0], "2.") && !strings.HasPrefix(parts[0], "4.") {
		return fmt.Errorf("unsupported Gmsh format version: %s", parts[0])
	}
	return skipSection(scanner, "$EndMeshFormat")
}

func readPhysicalNames(scanner *bufio.Scanner, msh *Mesh) error {
	header, err := scanInts(scanner, "PhysicalNames")
	if err != nil || len(header) != 1 {
		return fmt.Errorf("invalid PhysicalNames header")
	}
	for i := 0; i < header[0]; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading physical names")
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < 3 {
			continue
		}
		dimension, _ := strconv.Atoi(parts[0])
		tag, _ := strconv.Atoi(parts[1])
		name := strings.Trim(strings.Join(parts[2:], " "), "\"")
		msh.ElementGroups[tag] = &ElementGroup{
			Dimension:  dimension,
			Tag:        tag,
			Name:       name,
			MaterialID: tag,
			Elements:   []int{},
		}
	}
	return skipSection(scanner, "$EndPhysicalNames")
}

func readNodes22(scanner *bufio.Scanner, msh *Mesh) error {
	header, err := scanInts(scanner, "Nodes")
	if err != nil || len(header) != 1 {
		return fmt.Errorf("invalid Nodes header")
	}
	numNodes := header[0]
	msh.Vertices = make([][]float64, 0, numNodes)
	for i := 0; i < numNodes; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading nodes")
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < 4 {
			return fmt.Errorf("invalid node line: %s", scanner.Text())
		}
		nodeID, err := strconv.Atoi(parts[0])
		if err != nil {
			return fmt.Errorf("invalid node line: %s", scanner.Text())
		}
		coords, err := parseCoords(parts[1:])
		if err != nil {
			return err
		}
		msh.AddNode(nodeID, coords)
	}
	return skipSection(scanner, "$EndNodes")
}

func readElements22(scanner *bufio.Scanner, msh *Mesh) error {
	header, err := scanInts(scanner, "Elements")
	if err != nil || len(header) != 1 {
		return fmt.Errorf("invalid Elements header")
	}
	skipped := make(map[int]int)
	for i := 0; i < header[0]; i++ {
		parts, err := scanInts(scanner, "Elements")
		if err != nil {
			return err
		}
		if len(parts) < 3 {
			return fmt.Errorf("invalid element line")
		}
		elemID, gmshType, numTags := parts[0], parts[1], parts[2]
		if len(parts) < 3+numTags {
			return fmt.Errorf("element %d: invalid element tags", elemID)
		}
		etype, ok := gmshElementType[gmshType]
		if !ok {
			skipped[gmshType]++
			continue
		}
		nodeStart := 3 + numTags
		expectedNodes := etype.GetNumNodes()
		if len(parts) < nodeStart+expectedNodes {
			return fmt.Errorf("element %d: expected %d nodes, got %d",
				elemID, expectedNodes, len(parts)-nodeStart)
		}
		if err = msh.AddElement(elemID, etype, parts[3:nodeStart],
			parts[nodeStart:nodeStart+expectedNodes]); err != nil {
			return err
		}
	}
	logSkipped(skipped)
	return skipSection(scanner, "$EndElements")
}

func logSkipped(skipped map[int]int) {
	for gt, n := range skipped {
		utils.Logger().Warn("skipped unsupported gmsh elements", "gmshType", gt, "count", n)
	}
}

// readEntities4 keeps the physical tags of every entity, keyed by dimension
// then entity tag
func readEntities4(scanner *bufio.Scanner, entities map[int]map[int]*entityInfo) error {
	header, err := scanInts(scanner, "Entities")
	if err != nil || len(header) < 4 {
		return fmt.Errorf("invalid Entities header")
	}
	for dim := 0; dim < 4; dim++ {
		entities[dim] = make(map[int]*entityInfo)
		// Points carry x y z, higher entities a bounding box
		nCoords := 6
		if dim == 0 {
			nCoords = 3
		}
		for i := 0; i < header[dim]; i++ {
			if !scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading entities")
			}
			fields := strings.Fields(scanner.Text())
			if len(fields) < 2+nCoords {
				return fmt.Errorf("invalid entity line: %s", scanner.Text())
			}
			tag, _ := strconv.Atoi(fields[0])
			numPhys, _ := strconv.Atoi(fields[1+nCoords])
			info := &entityInfo{}
			for j := 0; j < numPhys && 2+nCoords+j < len(fields); j++ {
				pt, _ := strconv.Atoi(fields[2+nCoords+j])
				info.PhysicalTags = append(info.PhysicalTags, pt)
			}
			entities[dim][tag] = info
		}
	}
	return skipSection(scanner, "$EndEntities")
}

func readNodes4(scanner *bufio.Scanner, msh *Mesh) error {
	header, err := scanInts(scanner, "Nodes")
	if err != nil || len(header) < 4 {
		return fmt.Errorf("invalid Nodes header")
	}
	msh.Vertices = make([][]float64, 0, header[1])
	for i := 0; i < header[0]; i++ {
		block, err := scanInts(scanner, "Nodes")
		if err != nil || len(block) < 4 {
			return fmt.Errorf("invalid node block header")
		}
		var (
			numNodes = block[3]
			nodeTags = make([]int, numNodes)
		)
		for j := 0; j < numNodes; j++ {
			tag, err := scanInts(scanner, "Nodes")
			if err != nil || len(tag) != 1 {
				return fmt.Errorf("invalid node tag")
			}
			nodeTags[j] = tag[0]
		}
		for j := 0; j < numNodes; j++ {
			if !scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading node coordinates")
			}
			// Parametric coordinates after x y z are ignored
			coords, err := parseCoords(strings.Fields(scanner.Text()))
			if err != nil {
				return err
			}
			msh.AddNode(nodeTags[j], coords)
		}
	}
	return skipSection(scanner, "$EndNodes")
}

func readElements4(scanner *bufio.Scanner, msh *Mesh, entities map[int]map[int]*entityInfo) error {
	header, err := scanInts(scanner, "Elements")
	if err != nil || len(header) < 4 {
		return fmt.Errorf("invalid Elements header")
	}
	skipped := make(map[int]int)
	for i := 0; i < header[0]; i++ {
		block, err := scanInts(scanner, "Elements")
		if err != nil || len(block) < 4 {
			return fmt.Errorf("invalid element block header")
		}
		entityDim, entityTag, gmshType, numElems := block[0], block[1], block[2], block[3]
		etype, ok := gmshElementType[gmshType]
		if !ok {
			skipped[gmshType] += numElems
			for j := 0; j < numElems; j++ {
				scanner.Scan()
			}
			continue
		}
		var tags []int
		if info, ok := entities[entityDim][entityTag]; ok {
			tags = append(tags, info.PhysicalTags...)
		}
		if len(tags) == 0 {
			tags = append(tags, 0)
		}
		tags = append(tags, entityTag)
		expectedNodes := etype.GetNumNodes()
		for j := 0; j < numElems; j++ {
			fields, err := scanInts(scanner, "Elements")
			if err != nil {
				return err
			}
			if len(fields) < 1+expectedNodes {
				return fmt.Errorf("invalid element line: expected at least %d fields, got %d",
					1+expectedNodes, len(fields))
			}
			if err = msh.AddElement(fields[0], etype, tags, fields[1:1+expectedNodes]); err != nil {
				return err
			}
		}
	}
	logSkipped(skipped)
	return skipSection(scanner, "$EndElements")
}
