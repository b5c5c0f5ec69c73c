// Copyright 2012 Google Inc. All Rights Reserved.
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

package dash

import (
	"fmt"
	"os"
)

// gExplaining gates explainf, mirroring debug_flags.go's g_explaining: off
// by default, flipped on by cmd/dash's -v/--verbose flag.
var gExplaining = false

// SetExplaining toggles explain-level tracing for the dep_walk/expansion
// path.
func SetExplaining(on bool) {
	gExplaining = on
}

func explainf(msg string, a ...interface{}) {
	if gExplaining {
		fmt.Fprintf(os.Stderr, "dash: explain: "+msg+"\n", a...)
	}
}

func warningf(msg string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "dash: warning: "+msg+"\n", a...)
}

func errorf(msg string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "dash: error: "+msg+"\n", a...)
}

func infof(msg string, a ...interface{}) {
	fmt.Fprintf(os.Stdout, "dash: "+msg+"\n", a...)
}
