package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
)

// Recorder receives rendered canvas frames in order.
type Recorder interface {
	WriteFrame(img image.Image) error
	Close() error
}

// FFmpegRecorder pipes raw RGBA frames into a system ffmpeg process.
type FFmpegRecorder struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	out    bytes.Buffer
	width  int
	height int
	frames int
}

func NewFFmpegRecorder(
	ctx context.Context,
	videoPath string,
	width, height, fps int,
	encoderName string,
	quality int,
) (*FFmpegRecorder, error) {
	r := &FFmpegRecorder{width: width, height: height}

	args := buildFFmpegArgs(width, height, fps, videoPath, encoderName, quality)
	r.cmd = exec.CommandContext(ctx, "ffmpeg", args...)
	r.cmd.Stdout = &r.out
	r.cmd.Stderr = &r.out

	stdin, err := r.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	r.stdin = stdin

	if err := r.cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	return r, nil
}

func (r *FFmpegRecorder) WriteFrame(img image.Image) error {
	b := img.Bounds()
	if b.Dx() != r.width || b.Dy() != r.height {
		return fmt.Errorf("frame %dx%d does not match recorder %dx%d", b.Dx(), b.Dy(), r.width, r.height)
	}
	if err := writeRawRGBA(r.stdin, img); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	r.frames++
	return nil
}

// Frames returns how many frames were written.
func (r *FFmpegRecorder) Frames() int { return r.frames }

func (r *FFmpegRecorder) Close() error {
	r.stdin.Close()
	if err := r.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w\nLog: %s", err, r.out.String())
	}
	return nil
}

func buildFFmpegArgs(width, height, fps int, videoPath, encoderName string, quality int) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", fmt.Sprintf("%d", fps),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", encoderName,
	}

	// Качество в зависимости от энкодера
	switch encoderName {
	case "h264_videotoolbox":
		bitrate := quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", quality), "-preset", "medium")
	}

	args = append(args, videoPath)
	return args
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

// Discard is a Recorder that drops every frame.
type Discard struct{}

func (Discard) WriteFrame(image.Image) error { return nil }
func (Discard) Close() error                 { return nil }
