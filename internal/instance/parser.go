// Package instance parses the fixed-column ASCII instance files the
// 2E-CVRP reference data set ships in, turning flat records into an
// alns.Problem.
package instance

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/twoechelon/alns-solver/internal/alns"
	apperrors "github.com/twoechelon/alns-solver/pkg/errors"
)

// fieldWidth is the fixed column width of every field in an instance record.
const fieldWidth = 6

// headerPattern extracts the depot/satellite/customer counts from a
// filename of the form Ca{v}-{D},{S},{C}.txt.
var headerPattern = regexp.MustCompile(`^.*-(\d+),(\d+),(\d+)\.txt$`)

// counts is the (depot, satellite, customer) triple encoded in an
// instance file's name.
type counts struct {
	depots     int
	satellites int
	customers  int
}

// Parse reads an instance file at path and builds the alns.Problem it
// describes. Node ids are assigned depot(s) first, then satellites,
// then customers, each contiguous, regardless of the order records
// appear in the file (customers, then satellites, then depot(s)).
func Parse(path string) (*alns.Problem, error) {
	name := filepath.Base(path)
	cnt, err := parseHeader(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewBadRequestError("cannot open instance file").WithInternal(err)
	}
	defer f.Close()

	records, err := scanRecords(f)
	if err != nil {
		return nil, err
	}

	want := cnt.customers + cnt.satellites + cnt.depots
	if len(records) != want {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf(
			"instance %s: expected %d data lines (customers=%d satellites=%d depots=%d), got %d",
			name, want, cnt.customers, cnt.satellites, cnt.depots, len(records),
		))
	}

	customerRecords := records[:cnt.customers]
	satelliteRecords := records[cnt.customers : cnt.customers+cnt.satellites]
	depotRecords := records[cnt.customers+cnt.satellites:]

	nodeID := 0
	depots := make([]alns.Location, 0, cnt.depots)
	for _, rec := range depotRecords {
		x, y, serviceTime, err := rec.depotFields()
		if err != nil {
			return nil, wrapParseErr(name, err)
		}
		depots = append(depots, alns.NewLocation(x, y, 0, serviceTime, alns.KindDepot, nodeID))
		nodeID++
	}

	satellites := make([]alns.Location, 0, cnt.satellites)
	for _, rec := range satelliteRecords {
		x, y, serviceTime, err := rec.depotFields()
		if err != nil {
			return nil, wrapParseErr(name, err)
		}
		satellites = append(satellites, alns.NewLocation(x, y, 0, serviceTime, alns.KindSatellite, nodeID))
		nodeID++
	}

	customers := make([]alns.Customer, 0, cnt.customers)
	for _, rec := range customerRecords {
		x, y, demand, serviceTime, err := rec.customerFields()
		if err != nil {
			return nil, wrapParseErr(name, err)
		}
		loc := alns.NewLocation(x, y, demand, serviceTime, alns.KindCustomer, nodeID)
		customers = append(customers, alns.NewCustomer(nodeID, loc))
		nodeID++
	}

	if len(depots) == 0 {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("instance %s: no depot record", name))
	}

	return alns.NewProblem(strings.TrimSuffix(name, ".txt"), depots, satellites, customers), nil
}

func parseHeader(name string) (counts, error) {
	m := headerPattern.FindStringSubmatch(name)
	if m == nil {
		return counts{}, apperrors.NewBadRequestError(fmt.Sprintf(
			"instance filename %q does not match Ca{v}-{D},{S},{C}.txt", name))
	}

	depots, err1 := strconv.Atoi(m[1])
	satellites, err2 := strconv.Atoi(m[2])
	customers, err3 := strconv.Atoi(m[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return counts{}, apperrors.NewBadRequestError(fmt.Sprintf("instance filename %q has non-numeric counts", name))
	}

	return counts{depots: depots, satellites: satellites, customers: customers}, nil
}

// record is one physical line split into fixed-width fields.
type record struct {
	fields []string
}

func (r record) depotFields() (x, y, serviceTime int, err error) {
	x, err = atoiField(r, 0)
	if err != nil {
		return
	}
	y, err = atoiField(r, 1)
	if err != nil {
		return
	}
	serviceTime, err = atoiField(r, 2)
	return
}

func (r record) customerFields() (x, y, demand, serviceTime int, err error) {
	x, err = atoiField(r, 0)
	if err != nil {
		return
	}
	y, err = atoiField(r, 1)
	if err != nil {
		return
	}
	demand, err = atoiField(r, 4)
	if err != nil {
		return
	}
	serviceTime, err = atoiField(r, 5)
	return
}

func atoiField(r record, idx int) (int, error) {
	if idx >= len(r.fields) {
		return 0, fmt.Errorf("field %d missing", idx)
	}
	return strconv.Atoi(r.fields[idx])
}

func scanRecords(f *os.File) ([]record, error) {
	var records []record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, record{fields: splitFixedWidth(line)})
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.NewBadRequestError("failed reading instance file").WithInternal(err)
	}
	return records, nil
}

func splitFixedWidth(line string) []string {
	var fields []string
	for i := 0; i < len(line); i += fieldWidth {
		end := i + fieldWidth
		if end > len(line) {
			end = len(line)
		}
		fields = append(fields, strings.TrimSpace(line[i:end]))
	}
	return fields
}

func wrapParseErr(name string, err error) error {
	return apperrors.NewBadRequestError(fmt.Sprintf("instance %s: malformed record", name)).WithInternal(err)
}
