package cmd

import (
	"fmt"

	"github.com/mj1618/desktop-agent/internal/config"
	"github.com/mj1618/desktop-agent/internal/voice"
	"github.com/spf13/cobra"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <audio-file>",
	Short: "Transcribe an audio file with the speech model",
	Long: `Decode a WAV, MP3 or Ogg Vorbis file, resample it to 16 kHz mono and run it
through the speech-to-text model. Useful for checking the voice setup without a
microphone. Requires a build with the "voice" tag.`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	pcm, err := voice.DecodeFile(config.ExpandPath(args[0]))
	if err != nil {
		return err
	}

	t, err := voice.NewTranscriber(app.cfg.Voice)
	if err != nil {
		return err
	}
	defer t.Close()

	text, err := t.Transcribe(cmd.Context(), pcm)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}
