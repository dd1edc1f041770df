/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// xmldbserver is the daemon entry point: cobra-based flag parsing
// (config.cpp's getopt(":f:vh") plus an extra -o flag for printing the
// pipeline steps) wiring into internal/app's Application.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sabouaram/xmldbserver/internal/app"
	"github.com/sabouaram/xmldbserver/internal/xconsole"
	"github.com/sabouaram/xmldbserver/internal/xlog"
)

const version = "1.0.0"

var implementationSteps = []string{
	"1. client bytes arrive at the connection server (framing)",
	"2. the session buffers one request (client session)",
	"3. the request is handed to the bounded work queue",
	"4. a worker pulls the session from the queue",
	"5. the XML tree parses the request payload",
	"6. the mapper walks the tree and derives schema/operations",
	"7. the store facade persists or fetches rows",
	"8. the result is written back into the session",
	"9. the connection server sends the result to the client",
}

func main() {
	os.Exit(run())
}

func run() int {
	var configPath string

	root := &cobra.Command{
		Use:           "xmldbserver",
		Short:         "multi-client TCP XML-to-relational daemon",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return cmd.Help()
			}
			return serve(configPath)
		},
	}
	root.Flags().StringVarP(&configPath, "file", "f", "", "configuration file path")

	var showVersion, showSteps bool
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "print version and exit")
	root.Flags().BoolVarP(&showSteps, "steps", "o", false, "print implementation steps and exit")

	root.PreRunE = func(cmd *cobra.Command, args []string) error {
		if showVersion {
			xconsole.Line("xmldbserver version %s", version)
			os.Exit(0)
		}
		if showSteps {
			for _, step := range implementationSteps {
				xconsole.Line(step)
			}
			os.Exit(0)
		}
		return nil
	}

	if err := root.Execute(); err != nil {
		_ = root.Help()
		return 0
	}
	return 0
}

// serve builds and runs the Application until an operator interrupt or
// the "press Enter to stop" affordance fires, mirroring
// Application::run.
func serve(configPath string) error {
	a, err := app.New(configPath)
	if err != nil {
		xconsole.Error("%s", err.Error())
		xlog.Errorf("startup failed: %s", err.Error())
		return nil
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	go app.WaitForStopSignal(os.Stdin, cancel)

	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	time.Sleep(time.Second)
	a.PrintStartupBanner()

	if err := <-errCh; err != nil {
		xconsole.Error("%s", err.Error())
		xlog.Errorf("server failed: %s", err.Error())
		_ = a.Close()
		os.Exit(1)
	}
	return nil
}
