package engine

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/overlay/internal/canvas"
	"github.com/ivlev/overlay/internal/compositor"
	"github.com/ivlev/overlay/internal/config"
	"github.com/ivlev/overlay/internal/mailbox"
	"github.com/ivlev/overlay/internal/source"
	"github.com/ivlev/overlay/internal/system"
	"github.com/ivlev/overlay/internal/video"
)

// Player feeds frames from a Source through the Compositor onto a Canvas and
// hands every rendered canvas frame to a Recorder.
//
// The source is read on its own goroutine and delivered through a single-slot
// mailbox; only the render loop touches the compositor and the canvas.
// When the compositor's topic or transport changes, the render loop reopens the
// source through Open and closes the old one.
type Player struct {
	Config     *config.Config
	Compositor *compositor.Compositor
	Canvas     *canvas.Canvas
	Recorder   video.Recorder

	// Open subscribes to a topic; defaults to source.Open.
	Open func(topic, transport string) (source.Source, error)

	srcMu     sync.Mutex
	src       source.Source // nil after a failed reopen
	topic     string
	transport string

	slot       mailbox.Slot[source.Frame]
	seq        uint64
	generation uint64
	stats      Stats
}

// Stats summarizes a run.
type Stats struct {
	Ticks        int
	Drawn        int
	Received     int
	Published    uint64
	Dropped      uint64
	Rescales     int
	SourceErrors int
	Elapsed      time.Duration
}

func NewPlayer(cfg *config.Config, src source.Source, comp *compositor.Compositor, cv *canvas.Canvas, rec video.Recorder) *Player {
	if rec == nil {
		rec = video.Discard{}
	}
	o := comp.Config()
	return &Player{
		Config:     cfg,
		Compositor: comp,
		Canvas:     cv,
		Recorder:   rec,
		Open:       source.Open,
		src:        src,
		topic:      o.Topic,
		transport:  o.Transport,
		generation: comp.Generation(),
	}
}

// Source returns the source currently feeding the overlay, or nil.
func (p *Player) Source() source.Source {
	p.srcMu.Lock()
	defer p.srcMu.Unlock()
	return p.src
}

// Close closes the current source.
func (p *Player) Close() error {
	p.srcMu.Lock()
	defer p.srcMu.Unlock()
	if p.src == nil {
		return nil
	}
	err := p.src.Close()
	p.src = nil
	return err
}

// TotalTicks is the number of canvas frames a run renders.
func (p *Player) TotalTicks() int {
	n := int(math.Round(p.Config.Duration * float64(p.Config.FPS)))
	if n < 1 {
		n = 1
	}
	return n
}

func (p *Player) Run(ctx context.Context) error {
	if p.Config.FPS <= 0 {
		return fmt.Errorf("некорректный FPS: %d", p.Config.FPS)
	}
	src := p.Source()
	if src == nil || src.FrameCount() == 0 {
		return fmt.Errorf("источник не содержит кадров")
	}

	w, h := p.Canvas.Size()
	fmt.Println("--- [OVERLAY PLAYER] ---")
	fmt.Printf("[*] Холст: %dx%d @ %d FPS | Источник: %d кадров @ %.2f FPS\n",
		w, h, p.Config.FPS, src.FrameCount(), p.Config.SourceFPS)
	fmt.Println("------------------------")

	start := time.Now()
	var err error
	if p.Config.Realtime {
		err = p.runRealtime(ctx)
	} else {
		err = p.runOffline(ctx)
	}
	p.stats.Elapsed = time.Since(start)
	if err != nil {
		return err
	}

	if p.Config.Snapshot != "" {
		if err := p.Canvas.SavePNG(p.Config.Snapshot); err != nil {
			return fmt.Errorf("ошибка сохранения снимка: %w", err)
		}
		fmt.Printf("[*] Снимок последнего кадра: %s\n", p.Config.Snapshot)
	}

	if p.Config.ShowStats {
		p.printReport()
	}
	return nil
}

// runRealtime paces the source and the canvas with wall-clock tickers.
func (p *Player) runRealtime(ctx context.Context) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return p.produce(gctx)
	})

	g.Go(func() error {
		defer stop()

		ticker := time.NewTicker(time.Second / time.Duration(p.Config.FPS))
		defer ticker.Stop()

		total := p.TotalTicks()
		for i := 0; i < total; i++ {
			if err := p.tick(); err != nil {
				return err
			}
			select {
			case <-gctx.Done():
				log.Printf("[!] Остановлено после %d/%d кадров", i+1, total)
				return nil
			case <-ticker.C:
			}
		}
		return nil
	})

	return g.Wait()
}

func (p *Player) produce(ctx context.Context) error {
	p.publish(0)
	if p.Config.SourceFPS <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(time.Duration(float64(time.Second) / p.Config.SourceFPS))
	defer ticker.Stop()

	for i := 1; ; i++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.publish(i)
		}
	}
}

// runOffline renders as fast as possible on a simulated clock: before each
// canvas tick every source frame due by that time is published.
func (p *Player) runOffline(ctx context.Context) error {
	fps := float64(p.Config.FPS)
	next := 0

	total := p.TotalTicks()
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			log.Printf("[!] Остановлено после %d/%d кадров", i, total)
			return nil
		}

		now := float64(i) / fps
		for p.due(next, now) {
			p.publish(next)
			next++
		}

		if err := p.tick(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Player) due(index int, now float64) bool {
	if p.Config.SourceFPS <= 0 {
		return index == 0
	}
	return float64(index)/p.Config.SourceFPS <= now+1e-9
}

func (p *Player) publish(index int) {
	p.srcMu.Lock()
	defer p.srcMu.Unlock()

	if p.src == nil {
		return
	}
	count := p.src.FrameCount()
	if count == 0 {
		return
	}
	i := index % count
	img, err := p.src.Frame(i)
	if err != nil {
		log.Printf("[!] Ошибка чтения кадра %d: %v", i, err)
		p.stats.SourceErrors++
		return
	}
	p.seq++
	p.slot.Publish(source.Frame{Image: img, Timestamp: time.Now(), Seq: p.seq})
}

func (p *Player) tick() error {
	// Frames published for an older subscription must not reach the compositor.
	if gen := p.Compositor.Generation(); gen != p.generation {
		p.generation = gen
		p.resubscribe()
		p.slot.Reset()
	}

	if f, ok := p.slot.Take(); ok {
		p.Compositor.OnFrameReceived(f.Image)
		p.stats.Received++
	}

	p.Canvas.Clear()
	w, h := p.Canvas.Size()
	if inst, ok := p.Compositor.Draw(w, h, p.Canvas.Scale()); ok {
		p.Canvas.Blit(inst)
		p.stats.Drawn++
	}
	p.stats.Ticks++

	if err := p.Recorder.WriteFrame(p.Canvas.Image()); err != nil {
		return fmt.Errorf("ошибка записи кадра %d: %w", p.stats.Ticks, err)
	}
	return nil
}

// resubscribe reopens the source if the topic or transport changed.
// A source that fails to open leaves the overlay without frames.
func (p *Player) resubscribe() {
	o := p.Compositor.Config()
	if o.Topic == p.topic && o.Transport == p.transport {
		return
	}

	next, err := p.Open(o.Topic, o.Transport)

	p.srcMu.Lock()
	defer p.srcMu.Unlock()

	if p.src != nil {
		if cerr := p.src.Close(); cerr != nil {
			log.Printf("[!] Ошибка закрытия источника %s: %v", p.topic, cerr)
		}
	}
	p.src = nil
	p.topic, p.transport = o.Topic, o.Transport

	if err != nil {
		log.Printf("[!] Не удалось открыть источник %s (%s): %v", o.Topic, o.Transport, err)
		p.stats.SourceErrors++
		return
	}
	p.src = next
	fmt.Printf("[*] Источник переключен: %s (%s)\n", o.Topic, o.Transport)
}

// Stats returns the counters of the last run. Call after Run returns.
func (p *Player) Stats() Stats {
	s := p.stats
	s.Published, s.Dropped = p.slot.Stats()
	s.Rescales = p.Compositor.Rescales()
	return s
}

func (p *Player) printReport() {
	s := p.Stats()
	fps := 0.0
	if s.Elapsed > 0 {
		fps = float64(s.Ticks) / s.Elapsed.Seconds()
	}

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Canvas frames: %d (drawn: %d)\n"+
			"Source frames: %d published, %d received, %d dropped, %d errors\n"+
			"Rescales: %d\n"+
			"Effective FPS: %.2f\n",
		p.Config.BuildVersion, s.Elapsed.Seconds(),
		s.Ticks, s.Drawn,
		s.Published, s.Received, s.Dropped, s.SourceErrors,
		s.Rescales, fps,
	)
	fmt.Print(report)

	if ps, err := system.CollectProcessStats(); err == nil {
		fmt.Println(ps.String())
	} else {
		log.Printf("[!] Не удалось получить статистику процесса: %v", err)
	}
	fmt.Println("----------------------------")
}
