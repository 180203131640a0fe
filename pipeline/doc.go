// Package pipeline runs one media file through the SnapStudy stages:
//
//	audio_extraction → transcription → summarization → {quiz_generation, translation}
//	clip_generation (after summarization, from the source media)
//
// The Coordinator acquires a workspace, runs the stage graph through the
// dag engine and the stage executor, and always returns a Result with one
// outcome per stage, in stage order. Gating is on the outcome tag only: a
// stage whose upstream did not succeed is Skipped and never invoked.
//
//	c, _ := pipeline.New(cfg, workspaces, toolchain, caps)
//	res, err := c.Run(ctx, pipeline.Request{SourcePath: "lecture.mp4", TargetLang: "hi"})
//	payload := res.Payload()
package pipeline
