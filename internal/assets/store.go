package assets

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"storycraft-server/internal/models"
)

// Shelf names the logical bucket an asset pair lives in on disk.
type Shelf string

const (
	// ShelfStory holds densely numbered pairs: <position>.png / <position>m.png.
	ShelfStory Shelf = "story"
	// ShelfWorkshop holds id-named pairs under a workshop/ subdirectory.
	ShelfWorkshop Shelf = "workshop"
)

const (
	iconSuffix = "m"
	fileExt    = ".png"
	// IconSize is the fixed edge length of thumbnails.
	IconSize = 256
)

// Pair identifies a full image + thumbnail pair for one page.
type Pair struct {
	OwnerUser string
	ProjectID string
	Shelf     Shelf
	// Name is the position (decimal digits) on the story shelf or the page's
	// workshop asset id on the workshop shelf.
	Name string
}

// StoryPair returns the pair reference for a story-shelf position.
func StoryPair(ownerUser, projectID string, position int) Pair {
	return Pair{OwnerUser: ownerUser, ProjectID: projectID, Shelf: ShelfStory, Name: strconv.Itoa(position)}
}

// WorkshopPair returns the pair reference for an id-named workshop asset.
func WorkshopPair(ownerUser, projectID, id string) Pair {
	return Pair{OwnerUser: ownerUser, ProjectID: projectID, Shelf: ShelfWorkshop, Name: id}
}

// ImageRel returns the full image path relative to the store root.
func (p Pair) ImageRel() string {
	if p.Shelf == ShelfWorkshop {
		return filepath.Join(p.OwnerUser, p.ProjectID, "workshop", p.Name+fileExt)
	}
	return filepath.Join(p.OwnerUser, p.ProjectID, p.Name+fileExt)
}

// IconRel returns the thumbnail path relative to the store root.
func (p Pair) IconRel() string {
	if p.Shelf == ShelfWorkshop {
		return filepath.Join(p.OwnerUser, p.ProjectID, "workshop", p.Name+iconSuffix+fileExt)
	}
	return filepath.Join(p.OwnerUser, p.ProjectID, p.Name+iconSuffix+fileExt)
}

// Store is the filesystem Asset Store. All operations treat the image and its
// thumbnail as a unit: after any successful call either both files of a pair
// exist or neither does.
type Store struct {
	root   string
	logger *zap.Logger
}

// NewStore creates an asset store rooted at root.
func NewStore(root string, logger *zap.Logger) *Store {
	return &Store{root: root, logger: logger.Named("AssetStore")}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// ImagePath returns the absolute path of the pair's full image.
func (s *Store) ImagePath(p Pair) string {
	return filepath.Join(s.root, p.ImageRel())
}

// IconPath returns the absolute path of the pair's thumbnail.
func (s *Store) IconPath(p Pair) string {
	return filepath.Join(s.root, p.IconRel())
}

// PairExists reports whether both files of the pair are present.
func (s *Store) PairExists(p Pair) bool {
	if _, err := os.Stat(s.ImagePath(p)); err != nil {
		return false
	}
	if _, err := os.Stat(s.IconPath(p)); err != nil {
		return false
	}
	return true
}

// WritePair stores the image bytes and a freshly derived 256x256 thumbnail at
// the pair's paths. Files are staged next to their final location and swapped
// in only after both stage writes succeeded, so a retry after any failure
// overwrites deterministically.
func (s *Store) WritePair(p Pair, imageData []byte) error {
	img, err := imaging.Decode(bytes.NewReader(imageData))
	if err != nil {
		return fmt.Errorf("decode image for %s: %w", p.ImageRel(), err)
	}
	icon := imaging.Resize(img, IconSize, IconSize, imaging.Box)

	imagePath := s.ImagePath(p)
	iconPath := s.IconPath(p)
	if err := os.MkdirAll(filepath.Dir(imagePath), 0o755); err != nil {
		return fmt.Errorf("create asset directory: %w", err)
	}

	stagedImage := imagePath + ".tmp"
	stagedIcon := iconPath + ".tmp"
	if err := os.WriteFile(stagedImage, imageData, 0o644); err != nil {
		return fmt.Errorf("stage image %s: %w", p.ImageRel(), err)
	}
	if err := s.encodePNG(stagedIcon, icon); err != nil {
		os.Remove(stagedImage)
		return fmt.Errorf("stage icon %s: %w", p.IconRel(), err)
	}

	if err := os.Rename(stagedImage, imagePath); err != nil {
		os.Remove(stagedImage)
		os.Remove(stagedIcon)
		return fmt.Errorf("swap in image %s: %w", p.ImageRel(), err)
	}
	if err := os.Rename(stagedIcon, iconPath); err != nil {
		// The full image is already in place; take it back out so the pair
		// stays all-or-nothing.
		if rbErr := os.Remove(imagePath); rbErr != nil {
			s.logger.Error("Icon swap failed and image rollback failed",
				zap.String("image", imagePath), zap.Error(err), zap.NamedError("rollback_error", rbErr))
			return fmt.Errorf("%w: icon swap failed for %s: %v", models.ErrRenameInconsistency, p.IconRel(), err)
		}
		os.Remove(stagedIcon)
		return fmt.Errorf("swap in icon %s: %w", p.IconRel(), err)
	}
	return nil
}

// MovePair renames both files of a pair from src to dst. The source pair must
// exist in full, otherwise models.ErrAssetNotFound is returned and nothing is
// touched. If the thumbnail rename fails after the image rename succeeded the
// image rename is rolled back; a failed rollback surfaces as
// models.ErrRenameInconsistency.
func (s *Store) MovePair(src, dst Pair) error {
	if !s.PairExists(src) {
		return fmt.Errorf("%w: %s", models.ErrAssetNotFound, src.ImageRel())
	}

	srcImage, srcIcon := s.ImagePath(src), s.IconPath(src)
	dstImage, dstIcon := s.ImagePath(dst), s.IconPath(dst)
	if err := os.MkdirAll(filepath.Dir(dstImage), 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	if err := os.Rename(srcImage, dstImage); err != nil {
		return fmt.Errorf("move image %s -> %s: %w", src.ImageRel(), dst.ImageRel(), err)
	}
	if err := os.Rename(srcIcon, dstIcon); err != nil {
		if rbErr := os.Rename(dstImage, srcImage); rbErr != nil {
			s.logger.Error("Icon move failed and image rollback failed",
				zap.String("src", srcIcon), zap.String("dst", dstIcon),
				zap.Error(err), zap.NamedError("rollback_error", rbErr))
			return fmt.Errorf("%w: icon move %s -> %s failed: %v",
				models.ErrRenameInconsistency, src.IconRel(), dst.IconRel(), err)
		}
		return fmt.Errorf("move icon %s -> %s: %w", src.IconRel(), dst.IconRel(), err)
	}

	s.logger.Debug("Asset pair moved",
		zap.String("from", src.ImageRel()), zap.String("to", dst.ImageRel()))
	return nil
}

// RemovePair deletes both files of the pair. Removing an absent pair is a
// no-op so deletes stay idempotent.
func (s *Store) RemovePair(p Pair) error {
	if err := os.Remove(s.ImagePath(p)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image %s: %w", p.ImageRel(), err)
	}
	if err := os.Remove(s.IconPath(p)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: icon %s left behind: %v", models.ErrRenameInconsistency, p.IconRel(), err)
	}
	return nil
}

// RemoveProject deletes the whole asset tree of one project. Removing an
// absent tree is a no-op.
func (s *Store) RemoveProject(ownerUser, projectID string) error {
	if ownerUser == "" || projectID == "" {
		return fmt.Errorf("remove project assets: empty owner or project id")
	}
	dir := filepath.Join(s.root, ownerUser, projectID)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove project assets %s/%s: %w", ownerUser, projectID, err)
	}
	return nil
}

func (s *Store) encodePNG(path string, img image.Image) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
