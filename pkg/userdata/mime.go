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
	"strings"
)

const (
	// linuxBoundary separates parts of managed AL2 user data.
	linuxBoundary = "==MYBOUNDARY=="
	// nodeadmBoundary separates parts of AL2023 user data.
	nodeadmBoundary = "BOUNDARY"

	contentTypeShellScript = `text/x-shellscript; charset="us-ascii"`
	contentTypeNodeadm     = "application/node.eks.aws"
)

type mimePart struct {
	ContentType string
	Content     string
}

// renderMultipart renders a multipart/mixed document. Lines end in LF as
// cloud-init and nodeadm expect; the closing delimiter is followed by a
// newline.
func renderMultipart(boundary string, parts []mimePart) string {
	var b strings.Builder
	b.WriteString("MIME-Version: 1.0\n")
	b.WriteString(`Content-Type: multipart/mixed; boundary="` + boundary + "\"\n\n")
	for _, p := range parts {
		b.WriteString("--" + boundary + "\n")
		b.WriteString("Content-Type: " + p.ContentType + "\n\n")
		b.WriteString(p.Content + "\n")
	}
	b.WriteString("--" + boundary + "--\n")
	return b.String()
}
