package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter formats results for output.
type Formatter interface {
	FormatPut(w io.Writer, result *PutResult) error
	FormatGet(w io.Writer, entry *Entry) error
	FormatList(w io.Writer, result *ListResult) error
	FormatToken(w io.Writer, result *TokenResult) error
	FormatBench(w io.Writer, result *BenchResult) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatPut formats a put result as human-readable text.
func (f *HumanFormatter) FormatPut(w io.Writer, result *PutResult) error {
	if !f.Quiet {
		_, _ = fmt.Fprintln(w, result.Message)
	}
	return nil
}

// FormatGet writes the entry content as is.
func (f *HumanFormatter) FormatGet(w io.Writer, entry *Entry) error {
	_, err := io.WriteString(w, entry.Content)
	if err == nil && !strings.HasSuffix(entry.Content, "\n") {
		_, err = fmt.Fprintln(w)
	}
	return err
}

// FormatList formats list results as human-readable text.
func (f *HumanFormatter) FormatList(w io.Writer, result *ListResult) error {
	if len(result.Names) == 0 {
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "No %s found\n", result.Collection)
		}
		return nil
	}

	for _, name := range result.Names {
		_, _ = fmt.Fprintln(w, name)
	}

	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "\n%d %s\n", len(result.Names), result.Collection)
	}

	return nil
}

// FormatToken formats the token seen by the server.
func (f *HumanFormatter) FormatToken(w io.Writer, result *TokenResult) error {
	if !result.Present {
		_, _ = fmt.Fprintln(w, "No Bearer token provided.")
		return nil
	}
	_, _ = fmt.Fprintln(w, result.Token)
	return nil
}

// FormatBench formats a benchmark summary as human-readable text.
func (f *HumanFormatter) FormatBench(w io.Writer, result *BenchResult) error {
	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "Base URL: %s\n", result.Endpoint)
		_, _ = fmt.Fprintf(w, "Tokens:   %d\n", result.Tokens)

		for _, p := range result.Phases {
			label := ""
			if p.Token != "" {
				label = " token=" + p.Token
			}
			_, _ = fmt.Fprintf(w, "\n--- %s (%d requests) ---\n", p.Name, p.Total)
			_, _ = fmt.Fprintf(w, "  Cumulative ms: %d, Failed: %d%s\n", p.CumulativeMs, p.Failed, label)
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintln(w, strings.Repeat("=", 50))
	_, _ = fmt.Fprintln(w, "Summary")
	_, _ = fmt.Fprintln(w, strings.Repeat("=", 50))
	for _, p := range result.Phases {
		_, _ = fmt.Fprintf(w, "  %-45s cumulative ms: %6d  avg ms: %7s  (failed: %d)\n",
			p.Name, p.CumulativeMs, formatAverage(p), p.Failed)
	}

	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatPut formats a put result as JSON.
func (f *JSONFormatter) FormatPut(w io.Writer, result *PutResult) error {
	return writeJSON(w, result)
}

// FormatGet formats an entry as JSON.
func (f *JSONFormatter) FormatGet(w io.Writer, entry *Entry) error {
	return writeJSON(w, entry)
}

// FormatList formats list results as JSON.
func (f *JSONFormatter) FormatList(w io.Writer, result *ListResult) error {
	return writeJSON(w, result)
}

// FormatToken formats the token seen by the server as JSON.
func (f *JSONFormatter) FormatToken(w io.Writer, result *TokenResult) error {
	return writeJSON(w, result)
}

// FormatBench formats a benchmark summary as JSON, adding per-phase averages.
func (f *JSONFormatter) FormatBench(w io.Writer, result *BenchResult) error {
	type jsonPhase struct {
		BenchPhase
		AverageMs *float64 `json:"average_ms"`
	}

	output := struct {
		Endpoint string      `json:"endpoint"`
		Tokens   int         `json:"tokens"`
		Phases   []jsonPhase `json:"phases"`
		Failed   int         `json:"failed"`
	}{
		Endpoint: result.Endpoint,
		Tokens:   result.Tokens,
		Phases:   make([]jsonPhase, len(result.Phases)),
		Failed:   result.Failed(),
	}

	for i, p := range result.Phases {
		jp := jsonPhase{BenchPhase: p}
		if avg, ok := p.Average(); ok {
			jp.AverageMs = &avg
		}
		output.Phases[i] = jp
	}

	return writeJSON(w, output)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatAverage(p BenchPhase) string {
	avg, ok := p.Average()
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", avg)
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	maxNameLen := 4     // "NAME"
	maxEndpointLen := 8 // "ENDPOINT"
	for i := range profiles {
		if len(profiles[i].Name) > maxNameLen {
			maxNameLen = len(profiles[i].Name)
		}
		if len(profiles[i].Endpoint) > maxEndpointLen {
			maxEndpointLen = len(profiles[i].Endpoint)
		}
	}
	if maxNameLen > 20 {
		maxNameLen = 20
	}
	if maxEndpointLen > 50 {
		maxEndpointLen = 50
	}

	_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %s\n", maxNameLen, "NAME", maxEndpointLen, "ENDPOINT", "TOKEN")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", maxEndpointLen), strings.Repeat("-", 20))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		name := p.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		endpoint := p.Endpoint
		if len(endpoint) > maxEndpointLen {
			endpoint = endpoint[:maxEndpointLen-3] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s %-*s  %-*s  %s\n", marker, maxNameLen, name, maxEndpointLen, endpoint, maskSecret(p.Token, showSecrets))
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	_, _ = fmt.Fprintf(w, "Name:     %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Endpoint: %s\n", profile.Endpoint)
	_, _ = fmt.Fprintf(w, "Token:    %s\n", maskSecret(profile.Token, showSecrets))
	return nil
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	type jsonProfile struct {
		Name     string `json:"name"`
		Endpoint string `json:"endpoint"`
		Token    string `json:"token,omitempty"`
		Default  bool   `json:"default,omitempty"`
	}

	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		p := &profiles[i]
		output.Profiles[i] = jsonProfile{
			Name:     p.Name,
			Endpoint: p.Endpoint,
			Token:    maskSecret(p.Token, showSecrets),
			Default:  p.Name == defaultName,
		}
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	output := struct {
		Name     string `json:"name"`
		Endpoint string `json:"endpoint"`
		Token    string `json:"token"`
		Default  bool   `json:"default"`
	}{
		Name:     profile.Name,
		Endpoint: profile.Endpoint,
		Token:    maskSecret(profile.Token, showSecrets),
		Default:  isDefault,
	}

	return writeJSON(w, output)
}

// maskSecret masks a secret string, showing only first 4 and last 4 characters.
// If showSecrets is true, returns the original value.
// If the secret is too short, returns all asterisks.
func maskSecret(secret string, showSecrets bool) string {
	if showSecrets {
		return secret
	}
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
