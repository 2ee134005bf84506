package instance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twoechelon/alns-solver/internal/alns"
)

// writeFixedWidth writes one physical line of 6-character fields.
func writeFixedWidth(fields ...string) string {
	out := ""
	for _, f := range fields {
		for len(f) < fieldWidth {
			f = f + " "
		}
		out += f
	}
	return out
}

func writeInstance(t *testing.T, name string, lines []string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse_OneDepotTwoSatellitesThreeCustomers(t *testing.T) {
	lines := []string{
		// 3 customer lines: x, y, _, _, demand, serviceTime
		writeFixedWidth("12", "2", "0", "0", "10", "0"),
		writeFixedWidth("14", "-1", "0", "0", "15", "0"),
		writeFixedWidth("-12", "3", "0", "0", "8", "0"),
		// 2 satellite lines: x, y, serviceTime
		writeFixedWidth("10", "0", "0"),
		writeFixedWidth("-10", "0", "0"),
		// 1 depot line: x, y, serviceTime
		writeFixedWidth("0", "0", "0"),
	}
	path := writeInstance(t, "Ca1-1,2,3.txt", lines)

	problem, err := Parse(path)
	require.NoError(t, err)

	require.Len(t, problem.Depots, 1)
	require.Len(t, problem.Satellites, 2)
	require.Len(t, problem.Customers, 3)

	// Node ids: depot(s) first, then satellites, then customers, contiguous.
	assert.Equal(t, 0, problem.Depots[0].NodeID)
	assert.Equal(t, 1, problem.Satellites[0].NodeID)
	assert.Equal(t, 2, problem.Satellites[1].NodeID)
	assert.Equal(t, 3, problem.Customers[0].DeliveryLoc.NodeID)
	assert.Equal(t, 4, problem.Customers[1].DeliveryLoc.NodeID)
	assert.Equal(t, 5, problem.Customers[2].DeliveryLoc.NodeID)

	assert.Equal(t, 10, problem.Customers[0].DeliveryLoc.Demand)
	assert.Equal(t, alns.KindCustomer, problem.Customers[0].DeliveryLoc.Kind)
	assert.Equal(t, alns.KindSatellite, problem.Satellites[0].Kind)
	assert.Equal(t, alns.KindDepot, problem.Depots[0].Kind)
	assert.Equal(t, 0, problem.Satellites[0].Demand)
}

func TestParse_WrongLineCountIsRejected(t *testing.T) {
	lines := []string{
		writeFixedWidth("12", "2", "0", "0", "10", "0"),
		writeFixedWidth("10", "0", "0"),
		writeFixedWidth("0", "0", "0"),
	}
	path := writeInstance(t, "Ca1-1,2,3.txt", lines) // header says 3 customers, file has 1

	_, err := Parse(path)
	require.Error(t, err)
}

func TestParse_MalformedFilenameIsRejected(t *testing.T) {
	path := writeInstance(t, "not-a-valid-name.txt", []string{writeFixedWidth("0", "0", "0")})

	_, err := Parse(path)
	require.Error(t, err)
}

func TestParse_NonNumericFieldIsRejected(t *testing.T) {
	lines := []string{
		writeFixedWidth("xx", "2", "0", "0", "10", "0"),
		writeFixedWidth("10", "0", "0"),
		writeFixedWidth("0", "0", "0"),
	}
	path := writeInstance(t, "Ca1-1,1,1.txt", lines)

	_, err := Parse(path)
	require.Error(t, err)
}
