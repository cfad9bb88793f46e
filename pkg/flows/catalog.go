package flows

import (
	"sort"

	"github.com/aretw0/scribe"
	"github.com/aretw0/scribe/pkg/ports"
)

// Catalog holds every built flow by name.
type Catalog struct {
	flows map[string]*scribe.Engine
}

// NewCatalog builds all flows with the same collaborators.
func NewCatalog(d Deps) (*Catalog, error) {
	builders := map[string]func(Deps) (*scribe.Engine, error){
		FlowPost:    Post,
		FlowPDF2MD:  PDF2MD,
		FlowMD2DOCX: MD2DOCX,
	}
	c := &Catalog{flows: make(map[string]*scribe.Engine, len(builders))}
	for name, build := range builders {
		eng, err := build(d)
		if err != nil {
			return nil, err
		}
		c.flows[name] = eng
	}
	return c, nil
}

// Names lists the flow names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.flows))
	for name := range c.flows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Engine returns the named flow.
func (c *Catalog) Engine(name string) (*scribe.Engine, bool) {
	eng, ok := c.flows[name]
	return eng, ok
}

// Workflow implements ports.WorkflowCatalog.
func (c *Catalog) Workflow(name string) (ports.Workflow, bool) {
	eng, ok := c.flows[name]
	if !ok {
		return nil, false
	}
	return eng, true
}

var _ ports.WorkflowCatalog = (*Catalog)(nil)
