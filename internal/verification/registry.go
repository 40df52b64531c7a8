package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"time"
)

// RegistryRecord is what an authoritative registry returns for a valid
// identifier.
type RegistryRecord struct {
	LegalName  string `json:"legalName"`
	Status     string `json:"status"`
	BankName   string `json:"bankName"`
	Branch     string `json:"branch"`
	Confidence int    `json:"confidence"`
}

// RegistryClient looks identifiers up in the authoritative registries.
// Implementations may fail or time out; callers convert failures into a
// failed field status rather than propagating them.
type RegistryClient interface {
	LookupGST(ctx context.Context, gstin string) (*RegistryRecord, error)
	LookupPAN(ctx context.Context, pan string) (*RegistryRecord, error)
	LookupCIN(ctx context.Context, cin string) (*RegistryRecord, error)
	LookupBank(ctx context.Context, account, ifsc string) (*RegistryRecord, error)
}

// simulatedRegistry derives deterministic registry records from the
// identifier itself. Stands in for the government registry APIs in
// environments without upstream credentials.
type simulatedRegistry struct{}

// NewSimulatedRegistry creates a registry client that answers locally
func NewSimulatedRegistry() RegistryClient {
	return simulatedRegistry{}
}

func (simulatedRegistry) LookupGST(ctx context.Context, gstin string) (*RegistryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &RegistryRecord{
		LegalName:  syntheticName(gstin),
		Status:     "Active",
		Confidence: confidenceFor(gstin),
	}, nil
}

func (simulatedRegistry) LookupPAN(ctx context.Context, pan string) (*RegistryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &RegistryRecord{
		LegalName:  syntheticName(pan),
		Status:     "Valid",
		Confidence: confidenceFor(pan),
	}, nil
}

func (simulatedRegistry) LookupCIN(ctx context.Context, cin string) (*RegistryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &RegistryRecord{
		LegalName:  syntheticName(cin),
		Status:     "Active",
		Confidence: confidenceFor(cin),
	}, nil
}

func (simulatedRegistry) LookupBank(ctx context.Context, account, ifsc string) (*RegistryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bank := "State Bank"
	if len(ifsc) >= 4 {
		bank = strings.ToUpper(ifsc[:4]) + " Bank"
	}
	return &RegistryRecord{
		Status:     "Active",
		BankName:   bank,
		Branch:     fmt.Sprintf("Branch %s", ifsc[len(ifsc)-3:]),
		Confidence: confidenceFor(account + ifsc),
	}, nil
}

// confidenceFor yields a stable confidence in [85, 99] for an identifier
func confidenceFor(id string) int {
	h := fnv.New32a()
	h.Write([]byte(id))
	return 85 + int(h.Sum32()%15)
}

func syntheticName(id string) string {
	h := fnv.New32a()
	h.Write([]byte(id))
	return fmt.Sprintf("Registered Entity %04d", h.Sum32()%10000)
}

// defaultRegistryTimeout bounds a single registry lookup when no timeout
// is configured.
const defaultRegistryTimeout = 15 * time.Second

// httpRegistry talks to a registry gateway over HTTP. Record payloads are
// JSON in the RegistryRecord shape.
type httpRegistry struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRegistry creates a registry client for the gateway at baseURL
func NewHTTPRegistry(baseURL string, timeout time.Duration) RegistryClient {
	if timeout <= 0 {
		timeout = defaultRegistryTimeout
	}
	return &httpRegistry{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (r *httpRegistry) LookupGST(ctx context.Context, gstin string) (*RegistryRecord, error) {
	return r.get(ctx, "/gst/"+gstin)
}

func (r *httpRegistry) LookupPAN(ctx context.Context, pan string) (*RegistryRecord, error) {
	return r.get(ctx, "/pan/"+pan)
}

func (r *httpRegistry) LookupCIN(ctx context.Context, cin string) (*RegistryRecord, error) {
	return r.get(ctx, "/cin/"+cin)
}

func (r *httpRegistry) LookupBank(ctx context.Context, account, ifsc string) (*RegistryRecord, error) {
	return r.get(ctx, "/bank/"+account+"/"+ifsc)
}

func (r *httpRegistry) get(ctx context.Context, path string) (*RegistryRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned %d", resp.StatusCode)
	}

	var record RegistryRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("decode registry response: %w", err)
	}
	return &record, nil
}
