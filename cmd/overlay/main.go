package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ivlev/overlay/internal/canvas"
	"github.com/ivlev/overlay/internal/compositor"
	"github.com/ivlev/overlay/internal/config"
	"github.com/ivlev/overlay/internal/engine"
	"github.com/ivlev/overlay/internal/scaler"
	"github.com/ivlev/overlay/internal/source"
	"github.com/ivlev/overlay/internal/system"
	"github.com/ivlev/overlay/internal/video"
)

// Устанавливается через -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	topicPtr := flag.String("topic", "", "Источник кадров: PDF, изображение или папка с изображениями")
	transportPtr := flag.String("transport", config.DefaultTransport, "Транспорт: default, image, latest, pdf, pattern")
	settingsPtr := flag.String("settings", "overlay.yaml", "Файл настроек оверлея (YAML)")
	saveSettingsPtr := flag.Bool("save-settings", false, "Сохранить итоговые настройки оверлея в -settings")
	anchorPtr := flag.String("anchor", "", "Якорь: top-left, top-center, ..., bottom-right")
	unitsPtr := flag.String("units", "", "Единицы размера: pixels, percent")
	offsetXPtr := flag.Int("offset-x", 0, "Смещение по X в пикселях")
	offsetYPtr := flag.Int("offset-y", 0, "Смещение по Y в пикселях")
	widthPtr := flag.Float64("width", config.DefaultWidth, "Ширина оверлея (пиксели или проценты)")
	heightPtr := flag.Float64("height", config.DefaultHeight, "Высота оверлея (пиксели или проценты)")
	keepRatioPtr := flag.Bool("keep-ratio", false, "Сохранять пропорции источника (высота из ширины)")
	hiddenPtr := flag.Bool("hidden", false, "Скрыть оверлей")

	canvasWidthPtr := flag.Int("canvas-width", 1280, "Ширина холста")
	canvasHeightPtr := flag.Int("canvas-height", 720, "Высота холста")
	canvasScalePtr := flag.Float64("canvas-scale", 1, "Масштаб холста")
	backgroundPtr := flag.String("background", "", "Фоновое изображение холста")
	fpsPtr := flag.Int("fps", 30, "FPS холста")
	sourceFPSPtr := flag.Float64("source-fps", 10, "Частота кадров источника (0 - один кадр)")
	durationPtr := flag.Float64("duration", 5, "Длительность в секундах")
	kernelPtr := flag.String("kernel", "approx-bilinear", "Ядро масштабирования: nearest, approx-bilinear, bilinear, catmull-rom")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, видео не пишется)")
	snapshotPtr := flag.String("snapshot", "", "Сохранить последний кадр в PNG")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности")
	realtimePtr := flag.Bool("realtime", false, "Воспроизведение в реальном времени")
	verbosePtr := flag.Bool("verbose", false, "Отладочный вывод компоновщика")

	flag.Parse()

	overlay, err := config.LoadOverlay(*settingsPtr)
	if err != nil {
		log.Fatalf("[-] Ошибка чтения настроек: %v", err)
	}

	// Флаги перекрывают файл только если заданы явно
	var parseErr error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "topic":
			overlay.Topic = *topicPtr
		case "transport":
			overlay.Transport = *transportPtr
		case "anchor":
			a, err := config.ParseAnchor(*anchorPtr)
			if err != nil {
				parseErr = err
				return
			}
			overlay.Anchor = a
		case "units":
			u, err := config.ParseUnits(*unitsPtr)
			if err != nil {
				parseErr = err
				return
			}
			overlay.Units = u
		case "offset-x":
			overlay.OffsetX = *offsetXPtr
		case "offset-y":
			overlay.OffsetY = *offsetYPtr
		case "width":
			overlay.Width = *widthPtr
		case "height":
			overlay.Height = *heightPtr
		case "keep-ratio":
			overlay.KeepAspectRatio = *keepRatioPtr
		}
	})
	if parseErr != nil {
		log.Fatalf("[-] Ошибка параметров: %v", parseErr)
	}

	if *saveSettingsPtr {
		if err := config.SaveOverlay(*settingsPtr, overlay); err != nil {
			log.Fatalf("[-] Ошибка сохранения настроек: %v", err)
		}
		fmt.Printf("[*] Настройки сохранены: %s\n", *settingsPtr)
	}

	if overlay.Topic == "" {
		log.Fatalf("[-] Ошибка: не задан источник (-topic или topic в %s)", *settingsPtr)
	}

	src, err := source.Open(overlay.Topic, overlay.Transport)
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации источника: %v", err)
	}

	kernel, err := scaler.NewKernel(*kernelPtr)
	if err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}

	level := slog.LevelInfo
	if *verbosePtr {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	comp := compositor.New(overlay, compositor.WithResampler(kernel), compositor.WithLogger(logger))
	if *hiddenPtr {
		comp.SetVisible(false)
	}

	cv := canvas.New(*canvasWidthPtr, *canvasHeightPtr)
	cv.SetScale(*canvasScalePtr)
	if *backgroundPtr != "" {
		if err := cv.LoadBackground(*backgroundPtr); err != nil {
			log.Fatalf("[-] Ошибка загрузки фона: %v", err)
		}
	}

	cfg := &config.Config{
		CanvasWidth:  *canvasWidthPtr,
		CanvasHeight: *canvasHeightPtr,
		CanvasScale:  *canvasScalePtr,
		Background:   *backgroundPtr,
		FPS:          *fpsPtr,
		SourceFPS:    *sourceFPSPtr,
		Duration:     *durationPtr,
		Kernel:       kernel.Name(),
		OutputVideo:  *outputPtr,
		Snapshot:     *snapshotPtr,
		Quality:      *qualityPtr,
		Realtime:     *realtimePtr,
		ShowStats:    *statsPtr,
		BuildVersion: version,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rec video.Recorder
	if cfg.OutputVideo != "" {
		encoderName, _ := system.GetBestH264Encoder()
		if encoderName != "libx264" {
			fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
		}
		cfg.VideoEncoder = encoderName
		if cfg.Quality == 0 {
			cfg.Quality = system.DefaultQuality(encoderName)
		}

		rec, err = video.NewFFmpegRecorder(ctx, cfg.OutputVideo, cfg.CanvasWidth, cfg.CanvasHeight, cfg.FPS, cfg.VideoEncoder, cfg.Quality)
		if err != nil {
			log.Fatalf("[-] Ошибка запуска ffmpeg: %v", err)
		}
	}

	player := engine.NewPlayer(cfg, src, comp, cv, rec)
	defer player.Close()

	runErr := player.Run(ctx)
	if err := player.Recorder.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		log.Fatalf("[-] Ошибка воспроизведения: %v", runErr)
	}

	if status, msg := comp.Status(); status != compositor.StatusOK {
		log.Printf("[!] Оверлей: %s (%s)", status, msg)
	}

	if cfg.OutputVideo != "" {
		fmt.Printf("[+++] Успех! Результат: %s\n", cfg.OutputVideo)
	}
}
