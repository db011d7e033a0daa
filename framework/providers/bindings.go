package providers

import (
	"fmt"
	"net/http"

	"github.com/km-arc/go-inject/framework/container"
	gohttp "github.com/km-arc/go-inject/framework/http"
)

type bindingView struct {
	Ref          string   `json:"ref"`
	Component    string   `json:"component,omitempty"`
	Scope        string   `json:"scope,omitempty"`
	Dependencies []string `json:"dependencies"`
}

func bindingsHandler(c *container.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		bindings := c.Bindings()
		views := make([]bindingView, len(bindings))
		for i, b := range bindings {
			v := bindingView{Ref: b.Ref.String(), Dependencies: make([]string, len(b.Dependencies))}
			if b.Component != nil {
				v.Component = b.Component.String()
			}
			if b.Scope != nil {
				v.Scope = fmt.Sprint(b.Scope)
			}
			for j, d := range b.Dependencies {
				v.Dependencies[j] = d.String()
			}
			views[i] = v
		}
		gohttp.NewResponse(w).Success(views)
	}
}
