package builder

import (
	"sort"
)

// propertyKind enumerates the elements accepted inside <properties>
type propertyKind int

const (
	propHelp propertyKind = iota
	propValueHelp
	propConstraint
	propConstraintGroup
	propConstraintErrorMessage
	propValueless
	propMulti
	propHidden
	propCompletionHelp
	propPriority
)

var propertyKinds = map[string]propertyKind{
	"help":                   propHelp,
	"valueHelp":              propValueHelp,
	"constraint":             propConstraint,
	"constraintGroup":        propConstraintGroup,
	"constraintErrorMessage": propConstraintErrorMessage,
	"valueless":              propValueless,
	"multi":                  propMulti,
	"hidden":                 propHidden,
	"completionHelp":         propCompletionHelp,
	"priority":               propPriority,
}

// Element names accepted at each level, used for "did you mean" hints
var (
	nodeListElements   = []string{"node", "leafNode", "tagNode", "syntaxVersion"}
	nodeElements       = []string{"children", "properties", "defaultValue"}
	nodeAttributes     = []string{"name", "owner"}
	valueHelpElements  = []string{"format", "description"}
	constraintElements = []string{"regex", "validator"}
	completionElements = []string{"list", "script", "path"}
	validatorAttrs     = []string{"name", "argument"}
	versionAttrs       = []string{"component", "version"}
)

func propertyNames() []string {
	names := make([]string, 0, len(propertyKinds))
	for name := range propertyKinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
