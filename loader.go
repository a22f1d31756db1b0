package rebal

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// Scenarios are the economic scenarios averaged into the target mix.
var Scenarios = []string{"Base", "Disinflation", "Reflation", "HardLanding", "Stagflation", "Geopolitical"}

// headerAliases maps lower-cased CSV headers to the canonical column names.
// Unknown columns are ignored; columns already canonical map to themselves.
var headerAliases = map[string]string{
	"symbol":    "Symbol",
	"name":      "Name",
	"account":   "Account",
	"taxstatus": "TaxStatus",
	"quantity":  "Quantity",
	// per-share price
	"pricepershare": "Price",
	"currentprice":  "Price",
	"lastprice":     "Price",
	"price":         "Price",
	// per-share average cost
	"averagecost":  "AverageCost",
	"avgcost":      "AverageCost",
	"costpershare": "AverageCost",
	// market value (recomputed when inconsistent)
	"marketvalue":  "Value",
	"currentvalue": "Value",
	"currvalue":    "Value",
	"value":        "Value",
	// total (aggregate) cost
	"totalcost": "Cost",
	"cost":      "Cost",
}

// LoadHoldings reads a holdings CSV into the canonical schema. Headers are
// matched case-insensitively against the known aliases (PricePerShare,
// CurrentPrice and LastPrice all mean Price, and so on). Numeric cells that
// fail to parse coerce to zero rather than failing the load. Value and Cost
// are trusted when within a cent of Quantity*Price (resp. *AverageCost) and
// silently recomputed otherwise.
func LoadHoldings(path string) ([]Holding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open holdings file: %w", err)
	}
	defer f.Close()
	holdings, err := ReadHoldings(f)
	if err != nil {
		return nil, fmt.Errorf("cannot read holdings file %q: %w", path, err)
	}
	return holdings, nil
}

// ReadHoldings parses holdings CSV from r. See LoadHoldings.
func ReadHoldings(r io.Reader) ([]Holding, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read header: %w", err)
	}

	cols := make(map[string]int) // canonical name -> column index
	for i, name := range header {
		canon, ok := headerAliases[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		if _, dup := cols[canon]; !dup {
			cols[canon] = i
		}
	}

	required := []string{"Symbol", "Name", "Account", "TaxStatus", "Quantity", "Price", "AverageCost"}
	var missing []string
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("holdings missing required columns: %v", missing)
	}

	cell := func(record []string, canon string) (string, bool) {
		i, ok := cols[canon]
		if !ok || i >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[i]), true
	}
	number := func(record []string, canon string) (float64, bool) {
		s, ok := cell(record, canon)
		if !ok {
			return 0, false
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, true // coerce unparseable numbers to zero, keep the row
		}
		return v, true
	}

	var holdings []Holding
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read row: %w", err)
		}

		var h Holding
		h.Symbol, _ = cell(record, "Symbol")
		h.Name, _ = cell(record, "Name")
		h.Account, _ = cell(record, "Account")
		h.TaxStatus, _ = cell(record, "TaxStatus")
		h.Quantity, _ = number(record, "Quantity")
		h.Price, _ = number(record, "Price")
		h.AverageCost, _ = number(record, "AverageCost")

		value, hasValue := number(record, "Value")
		if calc := h.Quantity * h.Price; !hasValue || math.Abs(value-calc) > 0.01 {
			h.Value = calc
		} else {
			h.Value = value
		}
		cost, hasCost := number(record, "Cost")
		if calc := h.Quantity * h.AverageCost; !hasCost || math.Abs(cost-calc) > 0.01 {
			h.Cost = calc
		} else {
			h.Cost = cost
		}

		holdings = append(holdings, h)
	}
	return holdings, nil
}

// LoadTargets averages the per-scenario allocation files
// allocation_targetVol_<vol%>_<Scenario>_Real.csv under dir into one target
// weight vector: each sleeve averages over the files that mention it, negative
// weights clip to zero and the result is normalized to sum to one. A missing
// scenario file or an all-zero mix is an error.
func LoadTargets(dir string, volPct int) (Weights, error) {
	var missing []string
	sum := make(Weights)
	counts := make(map[string]int)
	for _, scenario := range Scenarios {
		path := filepath.Join(dir, fmt.Sprintf("allocation_targetVol_%d_%s_Real.csv", volPct, scenario))
		w, err := readTargetFile(path)
		if os.IsNotExist(err) {
			missing = append(missing, path)
			continue
		}
		if err != nil {
			return nil, err
		}
		for sleeve, weight := range w {
			sum[sleeve] += weight
			counts[sleeve]++
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing target files: %v", missing)
	}

	total := 0.0
	for sleeve, weight := range sum {
		weight /= float64(counts[sleeve])
		if weight < 0 {
			weight = 0
		}
		sum[sleeve] = weight
		total += weight
	}
	if total <= 0 {
		return nil, fmt.Errorf("target weights sum to zero")
	}
	for sleeve := range sum {
		sum[sleeve] /= total
	}
	return sum, nil
}

// readTargetFile parses one scenario file: a two-column CSV (sleeve, weight)
// with an optional header row.
func readTargetFile(path string) (Weights, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true
	w := make(Weights)
	first := true
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read target file %q: %w", path, err)
		}
		if len(record) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			if first {
				first = false
				continue // header row
			}
			return nil, fmt.Errorf("invalid weight in %q: %q", path, record[1])
		}
		first = false
		w[strings.TrimSpace(record[0])] = v
	}
	return w, nil
}

// LoadTargetsJSON extracts a target weight vector from a JSON document: the
// JSONPath expression (default "$.weights" when empty) must select an object
// of sleeve-to-number pairs. The result is clipped at zero and normalized like
// LoadTargets.
func LoadTargetsJSON(path, expr string) (Weights, error) {
	if expr == "" {
		expr = "$.weights"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read targets file: %w", err)
	}
	var jobj any
	if err := json.Unmarshal(data, &jobj); err != nil {
		return nil, fmt.Errorf("cannot parse targets file %q: %w", path, err)
	}

	jval, err := jsonpath.Get(expr, jobj)
	if err != nil {
		return nil, fmt.Errorf("cannot evaluate %q on %q: %w", expr, path, err)
	}
	// jsonpath may wrap a single match in a list; unwrap it.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	jmap, ok := jval.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%q did not select an object of weights in %q", expr, path)
	}

	w := make(Weights, len(jmap))
	total := 0.0
	for sleeve, v := range jmap {
		weight, ok := v.(float64)
		if !ok || weight < 0 {
			weight = 0
		}
		w[sleeve] = weight
		total += weight
	}
	if total <= 0 {
		return nil, fmt.Errorf("target weights in %q sum to zero", path)
	}
	for sleeve := range w {
		w[sleeve] /= total
	}
	return w, nil
}

// WriteTradesCSV writes the trade list in the export column layout.
func WriteTradesCSV(w io.Writer, trades []Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Account", "TaxStatus", "Identifier", "Sleeve", "Action", "Shares_Delta", "Price", "AverageCost", "Delta_$", "CapGain_$"}); err != nil {
		return err
	}
	for _, t := range trades {
		record := []string{
			t.Account, t.TaxStatus, t.Identifier, t.Sleeve, t.Action,
			formatFloat(t.SharesDelta), formatFloat(t.Price), formatFloat(t.AverageCost),
			formatFloat(t.DeltaDollars), formatFloat(t.CapGain),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteHoldingsCSV writes a holdings table in the canonical column layout.
func WriteHoldingsCSV(w io.Writer, holdings []Holding) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Account", "TaxStatus", "Name", "Symbol", "Sleeve", "Quantity", "Price", "AverageCost", "Value", "Cost"}); err != nil {
		return err
	}
	for _, h := range holdings {
		record := []string{
			h.Account, h.TaxStatus, h.Name, h.Symbol, h.Sleeve,
			formatFloat(h.Quantity), formatFloat(h.Price), formatFloat(h.AverageCost),
			formatFloat(h.Value), formatFloat(h.Cost),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// SortHoldings orders a holdings table by account, then symbol; handy before
// writing exports so diffs stay stable.
func SortHoldings(holdings []Holding) {
	sort.SliceStable(holdings, func(i, j int) bool {
		if holdings[i].Account != holdings[j].Account {
			return holdings[i].Account < holdings[j].Account
		}
		return holdings[i].Symbol < holdings[j].Symbol
	})
}
