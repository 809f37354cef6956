package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModuleName(t *testing.T) {
	tests := []struct {
		name   string
		lang   Language
		stmt   string
		want   string
		wantOK bool
	}{
		// Python
		{"py plain", LangPython, "import requests", "requests", true},
		{"py dotted", LangPython, "import os.path", "os.path", true},
		{"py list", LangPython, "import numpy, pandas", "numpy", true},
		{"py alias", LangPython, "import numpy as np", "numpy", true},
		{"py list alias", LangPython, "import a as b, c", "a", true},
		{"py from", LangPython, "from collections import OrderedDict", "collections", true},
		{"py from dotted", LangPython, "from os.path import join, exists", "os.path", true},
		{"py relative", LangPython, "from . import utils", "", false},
		{"py relative module", LangPython, "from ..core import base", "", false},
		{"py trailing comment", LangPython, "import yaml  # config", "yaml", true},
		{"py prose", LangPython, "from the docs we learn", "", false},
		{"py missing import keyword", LangPython, "from x", "", false},

		// Go
		{"go std", LangGo, `import "fmt"`, "fmt", true},
		{"go aliased", LangGo, `import errs "github.com/pkg/errors"`, "github.com/pkg/errors", true},

		// TS / JS
		{"ts default", LangTypeScript, `import axios from "axios";`, "axios", true},
		{"ts scoped", LangTypeScript, `import { z } from '@acme/schema';`, "@acme/schema", true},
		{"ts side effect", LangTypeScript, `import "reflect-metadata";`, "reflect-metadata", true},
		{"ts relative", LangTypeScript, `import { a } from "./a";`, "", false},
		{"ts parent", LangTypeScript, `import b from "../b";`, "", false},
		{"ts absolute", LangTypeScript, `import c from "/abs/c";`, "", false},
		{"js node builtin", LangJavaScript, `import path from 'node:path';`, "node:path", true},

		// Rust
		{"rust std", LangRust, "use std::collections::HashMap;", "std", true},
		{"rust crate", LangRust, "use crate::model::User;", "", false},
		{"rust self", LangRust, "use self::inner;", "", false},
		{"rust super", LangRust, "use super::*;", "", false},
		{"rust pub use", LangRust, "pub use serde::Serialize;", "serde", true},
		{"rust group", LangRust, "use tokio::{io, net};", "tokio", true},
		{"rust extern crate", LangRust, "extern crate libc;", "libc", true},
		{"rust leading path sep", LangRust, "use ::anyhow::Result;", "anyhow", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ModuleName(tt.lang, tt.stmt)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
