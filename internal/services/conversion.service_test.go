package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"musicbot/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const writeLastArgScript = "for last; do :; done\nprintf converted > \"$last\"\n"

func newConversionFixture(t *testing.T, ffmpegBody string) (*ConversionService, string) {
	t.Helper()
	binDir := t.TempDir()
	workDir := t.TempDir()
	cfg := config.Config{
		WorkDir:       workDir,
		FFmpegBinary:  writeScript(t, binDir, "ffmpeg", ffmpegBody),
		FFprobeBinary: writeScript(t, binDir, "ffprobe", "echo 12.3\n"),
	}
	return NewConversionService(cfg, NewMediaService(cfg)), workDir
}

func writeInput(t *testing.T, service *ConversionService, direction ConversionDirection) string {
	t.Helper()
	path, err := service.NewInputPath(direction)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("not really media"), 0o644))
	return path
}

func TestParseDirection(t *testing.T) {
	direction, err := ParseDirection("MP3_TO_MP4")
	require.NoError(t, err)
	assert.Equal(t, MP3ToMP4, direction)
	assert.Equal(t, ".mp4", direction.OutputExtension())

	_, err = ParseDirection("wav_to_flac")
	assert.Error(t, err)
}

func TestConvert_MP3ToMP4(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args.txt")
	t.Setenv("FAKE_ARGS_FILE", argsFile)
	service, _ := newConversionFixture(t, "echo \"$@\" > \"$FAKE_ARGS_FILE\"\n"+writeLastArgScript)
	input := writeInput(t, service, MP3ToMP4)

	output, err := service.Convert(context.Background(), MP3ToMP4, input)
	require.NoError(t, err)

	assert.FileExists(t, output)
	assert.Equal(t, ".mp4", filepath.Ext(output))
	assert.NoFileExists(t, input)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Contains(t, string(args), "color=c=blue:s=1280x720:d=13")
	assert.Contains(t, string(args), "-tune stillimage")
	assert.Contains(t, string(args), "-shortest")
}

func TestConvert_MP4ToMP3Arguments(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args.txt")
	t.Setenv("FAKE_ARGS_FILE", argsFile)
	service, _ := newConversionFixture(t, "echo \"$@\" > \"$FAKE_ARGS_FILE\"\n"+writeLastArgScript)
	input := writeInput(t, service, MP4ToMP3)

	_, err := service.Convert(context.Background(), MP4ToMP3, input)
	require.NoError(t, err)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Contains(t, string(args), "-vn -ar 44100 -ac 2 -b:a 192k -f mp3")
}

func TestConvert_FailureCarriesStderrAndCleansUp(t *testing.T) {
	service, _ := newConversionFixture(t,
		"for last; do :; done\nprintf partial > \"$last\"\necho 'invalid data found when processing input' >&2\nexit 1\n")
	input := writeInput(t, service, MP4ToMP3)
	expectedOutput := filepath.Join(filepath.Dir(input), "input_converted.mp3")

	_, err := service.Convert(context.Background(), MP4ToMP3, input)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid data")
	assert.ErrorIs(t, err, ErrTransferFailure)
	assert.NoFileExists(t, input)
	assert.NoFileExists(t, expectedOutput)
}

func TestConversionRun_DeliversVideoAndCleansUp(t *testing.T) {
	service, workDir := newConversionFixture(t, writeLastArgScript)
	input := writeInput(t, service, MP3ToMP4)
	delivery := &fakeDelivery{}

	err := service.Run(context.Background(), ConversionRequest{
		Direction:    MP3ToMP4,
		InputPath:    input,
		OriginalName: "my song.mp3",
	}, delivery)
	require.NoError(t, err)

	require.Len(t, delivery.videos, 1)
	assert.Equal(t, "my song.mp4", delivery.videos[0].FileName)
	assert.Equal(t, ConversionSuccessText, delivery.lastText())
	assert.Equal(t, "text", delivery.lastCall())

	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestConversionRun_FailureMessage(t *testing.T) {
	service, workDir := newConversionFixture(t, "echo 'invalid data' >&2\nexit 1\n")
	input := writeInput(t, service, MP4ToMP3)
	delivery := &fakeDelivery{}

	errs := service.Start(context.Background(), ConversionRequest{Direction: MP4ToMP3, InputPath: input}, delivery)
	err := <-errs
	service.Wait()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid data")
	assert.Empty(t, delivery.audio)
	assert.Contains(t, delivery.lastText(), "❌ Conversion failed")
	assert.Contains(t, delivery.lastText(), "invalid data")

	entries, readErr := os.ReadDir(workDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestConversionRun_KeepsCallerDirectory(t *testing.T) {
	service, _ := newConversionFixture(t, writeLastArgScript)
	callerDir := t.TempDir()
	input := filepath.Join(callerDir, "upload.mp3")
	sibling := filepath.Join(callerDir, "keep.txt")
	require.NoError(t, os.WriteFile(input, []byte("not really media"), 0o644))
	require.NoError(t, os.WriteFile(sibling, []byte("mine"), 0o644))

	err := service.Run(context.Background(), ConversionRequest{Direction: MP3ToMP4, InputPath: input}, &fakeDelivery{})
	require.NoError(t, err)

	assert.DirExists(t, callerDir)
	assert.FileExists(t, sibling)
	assert.NoFileExists(t, input)
}

func TestDisplayBaseName(t *testing.T) {
	assert.Equal(t, "Song - Artist", displayBaseName("upload.mp3", "Song", "Artist"))
	assert.Equal(t, "Song", displayBaseName("upload.mp3", "Song", ""))
	assert.Equal(t, "upload", displayBaseName("dir/upload.mp3", "", ""))
	assert.Equal(t, "converted", displayBaseName("", "", ""))
}
