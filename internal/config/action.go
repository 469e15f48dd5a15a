/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package config

// Action is one of the operations buildlab can perform
type Action string

const (
	ActionConvertYAML Action = "convertyaml"
	ActionDeploy      Action = "deploy"
	ActionValidate    Action = "validate"
	ActionDelete      Action = "delete"
	ActionTestGroup   Action = "testgroup"
	ActionLog         Action = "log"
	ActionGenPass     Action = "genpass"
)

var credentialKeys = []Key{
	KeyServicePrincipalID,
	KeyServicePrincipalKey,
	KeyTenant,
	KeySubscriptionID,
}

var templateDeploymentKeys = []Key{
	KeyGroupName,
	KeyGroupLocation,
	KeyARMTemplate,
	KeyDeploymentName,
	KeyStorageAccountName,
	KeyBuilderVMAdminPassword,
	KeyBuilderVMSize,
}

// requirements maps each action to the keys that must be present once all
// sources and runtime defaults have been merged
var requirements = map[Action][]Key{
	ActionConvertYAML: {KeyARMTemplate},
	ActionDeploy:      withCredentials(templateDeploymentKeys...),
	ActionValidate:    withCredentials(templateDeploymentKeys...),
	ActionDelete:      withCredentials(KeyGroupName),
	ActionTestGroup:   withCredentials(KeyGroupName),
	ActionLog:         withCredentials(KeyGroupName, KeyWorkspaceName, KeyLogQuery),
	ActionGenPass:     {KeyPasswordLength},
}

func withCredentials(keys ...Key) []Key {
	out := make([]Key, 0, len(credentialKeys)+len(keys))
	out = append(out, credentialKeys...)
	return append(out, keys...)
}

// Actions returns every known action
func Actions() []Action {
	return []Action{
		ActionConvertYAML,
		ActionDeploy,
		ActionValidate,
		ActionDelete,
		ActionTestGroup,
		ActionLog,
		ActionGenPass,
	}
}

// ParseAction converts an action token into an Action
func ParseAction(name string) (Action, error) {
	action := Action(name)
	if _, ok := requirements[action]; !ok {
		return "", &UnknownActionError{Action: name}
	}
	return action, nil
}

// RequiredKeys returns the keys that must be present for the action
func (a Action) RequiredKeys() []Key {
	keys := requirements[a]
	out := make([]Key, len(keys))
	copy(out, keys)
	return out
}

// NeedsCloud reports whether the action talks to Azure
func (a Action) NeedsCloud() bool {
	for _, k := range requirements[a] {
		if k == KeySubscriptionID {
			return true
		}
	}
	return false
}
