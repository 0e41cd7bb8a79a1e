package facade

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// HadoopConfig is the small config-table abstraction get_hadoop_config
// renders: an ordered set of key/value pairs plus a human-readable
// summary of which source file(s) they were loaded from. The real
// Hadoop Configuration object is an external collaborator out of this
// package's scope; this struct is the concrete stand-in that carries
// whatever the caller wants rendered.
type HadoopConfig struct {
	Sources []string
	Values  map[string]string
}

// sourceSummary joins Sources the way Hadoop's Configuration.toString()
// does: a comma-separated list of the files it was built from.
func (c HadoopConfig) sourceSummary() string {
	if len(c.Sources) == 0 {
		return "(no configuration sources)"
	}
	return strings.Join(c.Sources, ", ")
}

func (c HadoopConfig) sortedKeys() []string {
	keys := make([]string, 0, len(c.Values))
	for k := range c.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetHadoopConfig renders the full configuration as text or HTML: text
// begins with a "Hadoop Configuration" header followed by the source
// summary and "key=value" lines; HTML emits an <h2> header, the same
// summary, then a bordered Key/Value table.
func (f *Facade) GetHadoopConfig(cfg HadoopConfig, asText bool) string {
	done := track("get_hadoop_config")
	defer done("ok")

	if asText {
		return renderHadoopConfigText(cfg)
	}
	return renderHadoopConfigHTML(cfg)
}

// GetHadoopConfigValue returns the HTML-escaped rendering of a single
// key's value, or an empty string if the key is absent.
func (f *Facade) GetHadoopConfigValue(cfg HadoopConfig, key string) string {
	done := track("get_hadoop_config_value")
	defer done("ok")
	return html.EscapeString(cfg.Values[key])
}

func renderHadoopConfigText(cfg HadoopConfig) string {
	var b strings.Builder
	b.WriteString("Hadoop Configuration\n")
	b.WriteString(cfg.sourceSummary())
	b.WriteString("\n")
	for _, k := range cfg.sortedKeys() {
		fmt.Fprintf(&b, "%s=%s\n", k, cfg.Values[k])
	}
	return b.String()
}

func renderHadoopConfigHTML(cfg HadoopConfig) string {
	var b strings.Builder
	b.WriteString("<h2>Hadoop Configuration</h2>\n")
	fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(cfg.sourceSummary()))
	b.WriteString("<table border=\"1\">\n<tr><th>Key</th><th>Value</th></tr>\n")
	for _, k := range cfg.sortedKeys() {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td></tr>\n", html.EscapeString(k), html.EscapeString(cfg.Values[k]))
	}
	b.WriteString("</table>\n")
	return b.String()
}
