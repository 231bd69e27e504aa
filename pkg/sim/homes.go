package sim

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// HomePosition is where a pedestrian stands before their first trip.
type HomePosition struct {
	PedestrianID int
	EdgeID       string
	X            float64
	Y            float64
}

// SpliceHomes copies an FCD trajectory file, inserting a zero-time timestep
// with every pedestrian at their home position before the first real timestep.
// Returns the path of the new *_full.xml file.
func SpliceHomes(outputPath string, homes []HomePosition) (string, error) {
	fullPath := strings.Replace(outputPath, ".xml", "_full.xml", 1)

	in, err := os.Open(outputPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", outputPath, err)
	}
	defer in.Close()

	out, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", fullPath, err)
	}
	defer out.Close()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	writer := bufio.NewWriter(out)

	found := false
	for scanner.Scan() {
		line := scanner.Text()

		if !found && strings.Contains(line, "<timestep") {
			found = true
			writeHomeTimestep(writer, homes)
		}

		writer.WriteString(line)
		writer.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read %s: %w", outputPath, err)
	}

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("write %s: %w", fullPath, err)
	}
	return fullPath, nil
}

func writeHomeTimestep(writer *bufio.Writer, homes []HomePosition) {
	writer.WriteString("\t<timestep time=\"0.00\">\n")
	for _, home := range homes {
		fmt.Fprintf(writer,
			"\t\t<person id=\"ped%d_0\" x=\"%.2f\" y=\"%.2f\" angle=\"0.00\" speed=\"0.00\" pos=\"0.00\" edge=\"%s\" slope=\"0.00\"/>\n",
			home.PedestrianID, home.X, home.Y, home.EdgeID)
	}
	writer.WriteString("\t</timestep>\n")
}
