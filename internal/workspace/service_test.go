// Copyright 2026 The Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package workspace

import (
	"sync"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/flowdsl/flowls/internal/analysiscache"
	"github.com/flowdsl/flowls/internal/nameresolve"
	"github.com/flowdsl/flowls/internal/phase"
)

// recordingPublisher collects every Publish call, guarded by its own
// mutex since analyze() invokes it outside the service's own lock.
type recordingPublisher struct {
	mu    sync.Mutex
	calls map[string][]phase.Diagnostic
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{calls: map[string][]phase.Diagnostic{}}
}

func (p *recordingPublisher) Publish(uri string, diags []phase.Diagnostic) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[uri] = diags
}

func (p *recordingPublisher) get(uri string) ([]phase.Diagnostic, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, ok := p.calls[uri]
	return d, ok
}

func TestServiceMatchesFileBySuffix(t *testing.T) {
	scripts := NewScriptService(newRecordingPublisher())
	qt.Assert(t, qt.IsTrue(scripts.MatchesFile("main.nf")))
	qt.Assert(t, qt.IsFalse(scripts.MatchesFile("nextflow.config")))
}

func TestServiceMatchesFileExcludesBlacklistedConfigFixture(t *testing.T) {
	pub := newRecordingPublisher()
	configs := NewConfigService(nil, nil, nameresolve.ConfigOptions{}, pub)
	qt.Assert(t, qt.IsTrue(configs.MatchesFile("nextflow.config")))
	qt.Assert(t, qt.IsFalse(configs.MatchesFile("fixture.schema-fixture.config")))
}

// TestServiceDidOpenThenDidSavePublishesDiagnosticsSynchronously
// exercises spec.md §5's "immediate execution on explicit demand":
// DidSave flushes the debounce timer instead of waiting out the delay.
func TestServiceDidOpenThenDidSavePublishesDiagnosticsSynchronously(t *testing.T) {
	pub := newRecordingPublisher()
	svc := NewScriptService(pub)
	svc.DidOpen("main.nf", []byte(`
workflow {
  println(doesNotExist)
}
`))
	svc.DidSave("main.nf")

	diags, ok := pub.get("main.nf")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.HasLen(diags, 1))
	qt.Assert(t, qt.Equals(diags[0].Code, "NotDefined"))
}

// TestServiceDidCloseDropsURIFromCache exercises spec.md §3's "dropped
// when the file disappears from the workspace": after DidClose and a
// forced re-analysis, the URI no longer appears among the cache's live
// units.
func TestServiceDidCloseDropsURIFromCache(t *testing.T) {
	pub := newRecordingPublisher()
	svc := NewScriptService(pub)
	svc.DidOpen("main.nf", []byte(`
workflow {
  println(doesNotExist)
}
`))
	svc.DidSave("main.nf")

	var before []string
	svc.WithCache(func(c *analysiscache.Cache) { before = c.URIs() })
	qt.Assert(t, qt.Contains(before, "main.nf"))

	svc.DidClose("main.nf")
	svc.DidSave("main.nf")

	var after []string
	svc.WithCache(func(c *analysiscache.Cache) { after = c.URIs() })
	qt.Assert(t, qt.Not(qt.Contains(after, "main.nf")))
}

func TestServiceWithCacheGivesReadConsistentView(t *testing.T) {
	pub := newRecordingPublisher()
	svc := NewScriptService(pub)
	svc.DidOpen("main.nf", []byte("workflow {}\n"))
	svc.DidSave("main.nf")

	var uris []string
	svc.WithCache(func(c *analysiscache.Cache) {
		uris = c.URIs()
	})
	qt.Assert(t, qt.Contains(uris, "main.nf"))
}
