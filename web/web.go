// Package web 内嵌首页
package web

import _ "embed"

//go:embed index.html
var IndexHTML []byte
