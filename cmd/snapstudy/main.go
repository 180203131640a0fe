// Command snapstudy turns lecture videos into study material: transcript,
// summary, quiz, translated summary and short clips.
//
//	snapstudy serve                  # HTTP API on :5000
//	snapstudy process lecture.mp4    # one file, JSON result on stdout
//	snapstudy watch                  # process videos dropped into a folder
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
