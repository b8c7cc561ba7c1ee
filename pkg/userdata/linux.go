/*
 * Copyright (c) 2026, NVIDIA CORPORATION.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package userdata

import (
	"fmt"
	"strings"

	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
)

// linuxDialect renders an /etc/eks/bootstrap.sh invocation for AL2.
type linuxDialect struct{}

func (linuxDialect) Type() Type { return TypeLinux }

func (linuxDialect) managed(c ClusterMetadata, a *ManagedArgs) (string, error) {
	script, err := linuxBootstrapScript(c, &a.CommonArgs)
	if err != nil {
		return "", err
	}
	// EKS merges its own parts into managed node group user data, so the
	// script is always wrapped even though it is the only part.
	doc := renderMultipart(linuxBoundary, []mimePart{{ContentType: contentTypeShellScript, Content: script}})
	return strings.TrimSuffix(doc, "\n"), nil
}

func (linuxDialect) selfManagedV1(c ClusterMetadata, a *SelfManagedV1Args) (string, error) {
	userData, err := linuxSelfManaged(c, &a.SelfManagedArgs)
	if err != nil {
		return "", err
	}
	return userData + cfnSignal(a.StackName, a.AWSRegion), nil
}

func (linuxDialect) selfManagedV2(c ClusterMetadata, a *SelfManagedV2Args) (string, error) {
	return linuxSelfManaged(c, &a.SelfManagedArgs)
}

func linuxSelfManaged(c ClusterMetadata, a *SelfManagedArgs) (string, error) {
	script, err := linuxBootstrapScript(c, &a.CommonArgs)
	if err != nil {
		return "", err
	}

	var extra string
	if a.ExtraUserData != "" {
		delim := a.StackName + "-user-data"
		extra = "cat >/opt/user-data <<" + delim + "\n" +
			a.ExtraUserData + "\n" +
			delim + "\n" +
			"chmod +x /opt/user-data\n" +
			"/opt/user-data\n"
	}

	return script + "\n" + extra + "\n", nil
}

func linuxBootstrapScript(c ClusterMetadata, a *CommonArgs) (string, error) {
	if a.BottlerocketSettings != nil {
		return "", ekserrors.Unsupported("bottlerocketSettings",
			"The 'bottlerocketSettings' argument is not supported for Linux based user data.")
	}
	if len(a.NodeadmExtraOptions) > 0 {
		return "", ekserrors.Unsupported("nodeadmExtraOptions",
			"The 'nodeadmExtraOptions' argument is not supported for Linux based user data.")
	}

	extraArgs := ""
	if a.BootstrapExtraArgs != "" {
		extraArgs = " " + a.BootstrapExtraArgs
	}

	// A single flag is passed unquoted. Several flags are joined and single
	// quoted, which existing node groups depend on.
	switch flags := BuildKubeletFlags(a); {
	case len(flags) == 1:
		extraArgs += " --kubelet-extra-args " + flags[0]
	case len(flags) > 1:
		extraArgs += " --kubelet-extra-args '" + strings.Join(flags, " ") + "'"
	}

	return fmt.Sprintf("#!/bin/bash\n\n/etc/eks/bootstrap.sh --apiserver-endpoint \"%s\" --b64-cluster-ca \"%s\" \"%s\"%s",
		c.APIServerEndpoint, c.CertificateAuthority, c.Name, extraArgs), nil
}

// cfnSignal reports the bootstrap exit status to the owning stack.
func cfnSignal(stackName, region string) string {
	return fmt.Sprintf("/opt/aws/bin/cfn-signal --exit-code $? --stack %s --resource NodeGroup --region %s\n",
		stackName, region)
}
