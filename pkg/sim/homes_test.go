package sim

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleTrajectories = `<?xml version="1.0" encoding="UTF-8"?>
<fcd-export>
	<timestep time="60.00">
		<person id="ped0_0" x="10.00" y="0.00" angle="90.00" speed="0.80" pos="10.00" edge="E0" slope="0.00"/>
	</timestep>
	<timestep time="120.00">
		<person id="ped0_0" x="58.00" y="0.00" angle="90.00" speed="0.80" pos="58.00" edge="E0" slope="0.00"/>
	</timestep>
</fcd-export>`

func TestSpliceHomes(t *testing.T) {
	dir := t.TempDir()
	outputPath := filepath.Join(dir, "10_2_output.xml")
	if err := os.WriteFile(outputPath, []byte(sampleTrajectories), 0644); err != nil {
		t.Fatalf("write trajectory file: %v", err)
	}

	homes := []HomePosition{
		{PedestrianID: 0, EdgeID: "E0", X: 5, Y: 0},
		{PedestrianID: 1, EdgeID: "E3", X: 42.5, Y: 17.25},
	}

	fullPath, err := SpliceHomes(outputPath, homes)
	if err != nil {
		t.Fatalf("SpliceHomes failed: %v", err)
	}
	if fullPath != filepath.Join(dir, "10_2_output_full.xml") {
		t.Errorf("unexpected spliced file name %s", fullPath)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		t.Fatalf("read spliced file: %v", err)
	}
	content := string(data)

	zero := strings.Index(content, `<timestep time="0.00">`)
	first := strings.Index(content, `<timestep time="60.00">`)
	if zero == -1 {
		t.Fatalf("zero timestep missing from spliced output")
	}
	if first == -1 || zero > first {
		t.Errorf("zero timestep not placed before the first recorded timestep")
	}

	if !strings.Contains(content, `<person id="ped1_0" x="42.50" y="17.25" angle="0.00" speed="0.00" pos="0.00" edge="E3" slope="0.00"/>`) {
		t.Errorf("home position line malformed:\n%s", content)
	}

	// original timesteps survive untouched
	if !strings.Contains(content, `<timestep time="120.00">`) {
		t.Errorf("recorded timesteps lost during splicing")
	}
}

func TestSpliceHomesWithoutTimesteps(t *testing.T) {
	dir := t.TempDir()
	outputPath := filepath.Join(dir, "empty_output.xml")
	empty := "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<fcd-export>\n</fcd-export>\n"
	if err := os.WriteFile(outputPath, []byte(empty), 0644); err != nil {
		t.Fatalf("write trajectory file: %v", err)
	}

	fullPath, err := SpliceHomes(outputPath, []HomePosition{{PedestrianID: 0, EdgeID: "E0"}})
	if err != nil {
		t.Fatalf("SpliceHomes failed: %v", err)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		t.Fatalf("read spliced file: %v", err)
	}
	if strings.Contains(string(data), `<timestep time="0.00">`) {
		t.Errorf("zero timestep inserted into a file without timesteps")
	}
}
