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

// gambitFaces lists the corners of each Gambit face, 0-based, in Gambit's
// face numbering
var gambitFaces = map[utils.ElementType][][]int{
	utils.Triangle: {{0, 1}, {1, 2}, {2, 0}},
	utils.Tet:      {{1, 0, 2}, {0, 1, 3}, {1, 2, 3}, {2, 0, 3}},
}

type gambitElement struct {
	etype utils.ElementType
	nodes []int
	tag   int
}

// ReadGambitNeutralFile reads a Gambit neutral file (.neu)
func ReadGambitNeutralFile(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadGambitNeutral(file)
}

// ReadGambitNeutral reads triangle and tetrahedron meshes in Gambit neutral
// format. Element groups become material tags and element/face boundary sets
// become boundary tags numbered from 1 in file order.
func ReadGambitNeutral(r io.Reader) (*Mesh, error) {
	var (
		msh          = NewMesh()
		scanner      = bufio.NewScanner(r)
		numnp, nelem int
		elements     []gambitElement
		foundControl bool
	)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.Contains(line, "NUMNP") && strings.Contains(line, "NELEM") {
			header, err := scanInts(scanner, "control info")
			if err != nil || len(header) < 4 {
				return nil, fmt.Errorf("invalid control info")
			}
			// NGRPS and NBSETS are implied by the section headers
			numnp, nelem = header[0], header[1]
			foundControl = true
			break
		}
	}
	if !foundControl {
		return nil, fmt.Errorf("could not find control info section")
	}
	msh.FormatVersion = "neutral"

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		var err error
		switch {
		case strings.Contains(line, "NODAL COORDINATES"):
			err = readGambitNodes(scanner, msh, numnp)
		case strings.Contains(line, "ELEMENTS/CELLS"):
			elements, err = readGambitElements(scanner, msh, nelem)
		case strings.Contains(line, "ELEMENT GROUP"):
			err = readGambitGroup(scanner, msh, elements)
		case strings.Contains(line, "BOUNDARY CONDITIONS"):
			err = readGambitBoundary(scanner, msh, elements)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %v", err)
	}
	for k, e := range elements {
		if e.etype == utils.Unknown {
			continue
		}
		msh.AddElementByIndex(k+1, e.etype, []int{e.tag}, e.nodes)
	}
	msh.BuildConnectivity()
	return msh, nil
}

func readGambitNodes(scanner *bufio.Scanner, msh *Mesh, numnp int) error {
	for i := 0; i < numnp; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading nodes")
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			return fmt.Errorf("invalid node line: %s", scanner.Text())
		}
		nodeID, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("invalid node line: %s", scanner.Text())
		}
		// Two dimensional files omit z
		coords := make([]float64, 3)
		for k := 1; k < len(fields) && k <= 3; k++ {
			if coords[k-1], err = strconv.ParseFloat(fields[k], 64); err != nil {
				return err
			}
		}
		msh.AddNode(nodeID, coords)
	}
	return nil
}

func readGambitElements(scanner *bufio.Scanner, msh *Mesh, nelem int) ([]gambitElement, error) {
	var (
		elements = make([]gambitElement, nelem)
		skipped  int
	)
	for i := 0; i < nelem; i++ {
		fields, err := scanInts(scanner, "ELEMENTS/CELLS")
		if err != nil {
			return nil, err
		}
		if len(fields) < 3 {
			return nil, fmt.Errorf("invalid element line")
		}
		elemID, gambitType, numNodes := fields[0], fields[1], fields[2]
		// Long connectivity lists continue on following lines
		for len(fields) < 3+numNodes {
			more, err := scanInts(scanner, "ELEMENTS/CELLS")
			if err != nil {
				return nil, err
			}
			fields = append(fields, more...)
		}
		if elemID < 1 || elemID > nelem {
			return nil, fmt.Errorf("element id %d out of range", elemID)
		}
		var etype utils.ElementType
		switch gambitType {
		case 3:
			etype = utils.Triangle
		case 6:
			etype = utils.Tet
		default:
			skipped++
			continue
		}
		nodes := make([]int, numNodes)
		for j := range nodes {
			idx, ok := msh.GetNodeIndex(fields[3+j])
			if !ok {
				return nil, fmt.Errorf("element %d references unknown node %d", elemID, fields[3+j])
			}
			nodes[j] = idx
		}
		elements[elemID-1] = gambitElement{etype: etype, nodes: nodes}
	}
	if skipped > 0 {
		utils.Logger().Warn("skipped non-simplex gambit elements", "count", skipped)
	}
	return elements, nil
}

func readGambitGroup(scanner *bufio.Scanner, msh *Mesh, elements []gambitElement) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in ELEMENT GROUP")
	}
	var (
		groupID, numElems, materialID, nflags int
		parts                                 = strings.Fields(scanner.Text())
	)
	for i := 0; i < len(parts)-1; i++ {
		switch parts[i] {
		case "GROUP:":
			groupID, _ = strconv.Atoi(parts[i+1])
		case "ELEMENTS:":
			numElems, _ = strconv.Atoi(parts[i+1])
		case "MATERIAL:":
			materialID, _ = strconv.Atoi(parts[i+1])
		case "NFLAGS:":
			nflags, _ = strconv.Atoi(parts[i+1])
		}
	}
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in ELEMENT GROUP")
	}
	group := &ElementGroup{
		Dimension:  gambitDimension(elements),
		Tag:        groupID,
		Name:       strings.TrimSpace(scanner.Text()),
		MaterialID: materialID,
		Elements:   []int{},
	}
	msh.ElementGroups[groupID] = group
	if nflags > 0 && !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in ELEMENT GROUP flags")
	}
	for read := 0; read < numElems; {
		ids, err := scanInts(scanner, "ELEMENT GROUP")
		if err != nil {
			return err
		}
		for _, id := range ids {
			if id > 0 && id <= len(elements) {
				elements[id-1].tag = groupID
			}
			read++
		}
	}
	return nil
}

func gambitDimension(elements []gambitElement) (dim int) {
	for _, e := range elements {
		if d := e.etype.GetDimension(); d > dim {
			dim = d
		}
	}
	return
}

func readGambitBoundary(scanner *bufio.Scanner, msh *Mesh, elements []gambitElement) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in BOUNDARY CONDITIONS")
	}
	// NAME ITYPE NENTRY NVALUES IBCODE...
	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid boundary condition header: %s", scanner.Text())
	}
	var (
		bcName    = parts[0]
		itype, _  = strconv.Atoi(parts[1])
		nentry, _ = strconv.Atoi(parts[2])
		tag       = len(msh.BoundaryTags) + 1
	)
	msh.BoundaryTags[tag] = bcName
	for i := 0; i < nentry; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading boundary set %s", bcName)
		}
		// Node sets carry no face information
		if itype != 1 {
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		elemID, _ := strconv.Atoi(fields[0])
		faceID, _ := strconv.Atoi(fields[2])
		if elemID < 1 || elemID > len(elements) {
			continue
		}
		e := elements[elemID-1]
		faces := gambitFaces[e.etype]
		if faceID < 1 || faceID > len(faces) {
			continue
		}
		nodes := make([]int, 0, len(faces[faceID-1]))
		for _, l := range faces[faceID-1] {
			nodes = append(nodes, e.nodes[l])
		}
		msh.AddBoundaryElement(bcName, BoundaryElement{
			ElementType: e.etype.FacetType(),
			Nodes:       nodes,
			Tag:         tag,
		})
	}
	return nil
}
