/*
Copyright 2011-2026 Frederic Langlet
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	hutter "github.com/holbizmetrics/HutterPrize"
	"github.com/holbizmetrics/HutterPrize/method"
)

const _APP_HEADER = "Hutter statistical compressor\n"

var (
	inputName  string
	outputName string
	methodName string
	ppmOrder   int
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:           "hutter",
		Short:         "lossless statistical compressor for large text corpora",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&methodName, "method", "m", "cm", "compression method ("+strings.Join(method.Names(), ", ")+")")
	root.PersistentFlags().IntVarP(&ppmOrder, "order", "O", 4, "maximum context order for the ppm method")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print sizes, ratio and timing")

	root.AddCommand(newCompressCommand())
	root.AddCommand(newDecompressCommand())
	root.AddCommand(newVerifyCommand())
	root.AddCommand(newListCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(hutter.ERR_PROCESS_DATA)
	}
}

// newMethod builds the selected method, honoring the order flag for ppm
func newMethod() (method.Method, error) {
	if strings.ToLower(methodName) == "ppm" {
		return method.NewPPM(ppmOrder)
	}

	return method.New(methodName)
}

func readInput(name string) ([]byte, error) {
	if name == "" || name == "-" {
		return os.ReadFile("/dev/stdin")
	}

	return os.ReadFile(name)
}

func writeOutput(name string, data []byte) error {
	if name == "" || name == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}

	return os.WriteFile(name, data, 0644)
}

func newCompressCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compress",
		Short: "compress a file or stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMethod()

			if err != nil {
				return err
			}

			data, err := readInput(inputName)

			if err != nil {
				return err
			}

			res, err := m.Compress(data)

			if err != nil {
				return err
			}

			if err := writeOutput(outputName, res.Data); err != nil {
				return err
			}

			if verbose {
				printResult(res)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&inputName, "input", "i", "", "input file (default stdin)")
	cmd.Flags().StringVarP(&outputName, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newDecompressCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decompress",
		Short: "decompress a file or stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMethod()

			if err != nil {
				return err
			}

			data, err := readInput(inputName)

			if err != nil {
				return err
			}

			out, err := m.Decompress(data)

			if err != nil {
				return err
			}

			if err := writeOutput(outputName, out); err != nil {
				return err
			}

			if verbose {
				fmt.Fprintf(os.Stderr, "Decompressed %d => %d bytes with %s\n", len(data), len(out), m.Name())
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&inputName, "input", "i", "", "input file (default stdin)")
	cmd.Flags().StringVarP(&outputName, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "check the lossless round-trip on a file or stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMethod()

			if err != nil {
				return err
			}

			data, err := readInput(inputName)

			if err != nil {
				return err
			}

			if err := method.Verify(m, data); err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "Verified %d bytes with %s\n", len(data), m.Name())
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputName, "input", "i", "", "input file (default stdin)")
	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list the available methods",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print(_APP_HEADER)

			for _, name := range method.Names() {
				fmt.Println("  " + name)
			}

			return nil
		},
	}
}

func printResult(res *method.Result) {
	ratio := float64(0)

	if res.OriginalSize > 0 {
		ratio = float64(res.CompressedSize) / float64(res.OriginalSize)
	}

	fmt.Fprintf(os.Stderr, "Method:     %s\n", res.Method)
	fmt.Fprintf(os.Stderr, "Original:   %d bytes\n", res.OriginalSize)
	fmt.Fprintf(os.Stderr, "Compressed: %d bytes (ratio %.4f)\n", res.CompressedSize, ratio)
	fmt.Fprintf(os.Stderr, "Duration:   %v\n", res.Duration)

	if res.OriginalSize > 0 && res.Duration.Seconds() > 0 {
		fmt.Fprintf(os.Stderr, "Throughput: %.1f KB/s\n", float64(res.OriginalSize)/1024/res.Duration.Seconds())
	}
}
