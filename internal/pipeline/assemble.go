// Package pipeline wires discovery, the bounded queue, the worker pool,
// the extractor, the normalizer, the validator, the ingester and the
// Progress Store into the end-to-end per-paper flow (§4, §5, §6.4). The
// top-level shape — a Runner holding every long-lived collaborator,
// built once from config.Config and handed to worker.Pool as a
// worker.Process closure — follows the teacher's own main-package wiring
// style of constructing every component up front and passing closures into
// the concurrency layer rather than threading config through each stage.
package pipeline

import (
	"context"
	"strings"

	"smj-graphpipeline/internal/graph"
	"smj-graphpipeline/internal/ids"
	"smj-graphpipeline/internal/model"
	"smj-graphpipeline/internal/normalizer"
	"smj-graphpipeline/internal/validator"
)

// Assembler converts one extractor.Extract result into a
// graph.PaperIngestInput: run normalization ahead of validation per the
// supplemented "normalize before validate" ordering, so validation checks
// the canonical names rather than the raw surface forms. Type fields are
// not normalized and reach the enum checks as extracted.
type Assembler struct {
	norm *normalizer.Normalizer
}

// NewAssembler builds an Assembler sharing the process-wide Normalizer.
func NewAssembler(norm *normalizer.Normalizer) *Assembler {
	return &Assembler{norm: norm}
}

// Assemble runs §4.5 normalization and §4.4 validation over one paper's raw
// extraction result and returns the ingester-ready input.
func (a *Assembler) Assemble(ctx context.Context, result *model.ExtractionResult) graph.PaperIngestInput {
	paper := validator.ValidateMetadata(result.PaperID, result.Metadata)

	in := graph.PaperIngestInput{
		Paper:             paper,
		Authors:           a.assembleAuthors(result.Authors),
		Variables:         a.assembleVariables(result.PaperID, result.Variables),
		Findings:          a.assembleFindings(result.PaperID, result.Findings),
		Contributions:     a.assembleContributions(result.PaperID, result.Contributions),
		ResearchQuestions: a.assembleResearchQuestions(result.PaperID, result.ResearchQuestions),
		Citations:         a.assembleCitations(result.Citations),
	}

	in.Theories = a.assembleTheories(ctx, result.Theories)
	in.Phenomena = a.assemblePhenomena(ctx, result.Phenomena)
	in.Methods, in.Software = a.assembleMethods(ctx, result.Methods)
	in.TheoryPhenomenonLinks = a.assembleLinks(ctx, result.TheoryPhenomenonLinks)

	return in
}

func (a *Assembler) assembleAuthors(raw []model.RawAuthor) []graph.AuthorRecord {
	out := make([]graph.AuthorRecord, 0, len(raw))
	for _, r := range raw {
		fullName := strings.TrimSpace(r.FullName)
		if fullName == "" {
			continue
		}
		coerced := validator.Coerce("author", map[string]any{"full_name": fullName})
		if problems := validator.Check("author", coerced); len(problems) > 0 {
			coerced = validator.Minimal("author", coerced)
		}

		rec := graph.AuthorRecord{
			Author: model.Author{
				AuthorID:   ids.AuthorID(fullName, r.GivenName, r.FamilyName),
				FullName:   fullName,
				GivenName:  r.GivenName,
				FamilyName: r.FamilyName,
				ORCID:      r.ORCID,
				Email:      r.Email,
			},
			Position: r.Position,
		}
		for _, aff := range r.Affiliations {
			name := strings.TrimSpace(aff.InstitutionName)
			if name == "" {
				continue
			}
			rec.Affiliations = append(rec.Affiliations, graph.AffiliationRecord{
				Institution: model.Institution{
					InstitutionID:   ids.InstitutionID(name),
					InstitutionName: name,
					Department:      aff.Department,
					City:            aff.City,
					Country:         aff.Country,
				},
				Edge: model.AffiliatedWithEdge{
					AffiliationType: aff.AffiliationType,
					PositionTitle:   aff.PositionTitle,
				},
			})
		}
		out = append(out, rec)
	}
	return out
}

func (a *Assembler) assembleTheories(ctx context.Context, raw []model.RawTheory) []graph.TheoryRecord {
	out := make([]graph.TheoryRecord, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		result := a.norm.Normalize(ctx, normalizer.ClassTheory, r.Name)

		coerced := validator.Coerce("theory", map[string]any{
			"name": result.Canonical, "role": string(r.Role), "theory_type": string(r.TheoryType),
		})
		if problems := validator.Check("theory", coerced); len(problems) > 0 {
			coerced = validator.Minimal("theory", coerced)
		}

		out = append(out, graph.TheoryRecord{
			Theory: model.Theory{
				Name:         coerced["name"].(string),
				Domain:       r.Domain,
				TheoryType:   model.TheoryType(asString(coerced["theory_type"])),
				Description:  r.Description,
				OriginalName: result.OriginalName,
			},
			Edge: model.UsesTheory{
				Role:             model.TheoryRole(asString(coerced["role"])),
				Section:          r.Section,
				UsageContext:     r.UsageContext,
				Confidence:       r.Confidence,
				ValidationStatus: r.ValidationStatus,
			},
		})
	}
	return out
}

func (a *Assembler) assemblePhenomena(ctx context.Context, raw []model.RawPhenomenon) []graph.PhenomenonRecord {
	out := make([]graph.PhenomenonRecord, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		result := a.norm.Normalize(ctx, normalizer.ClassPhenomenon, r.Name)

		coerced := validator.Coerce("phenomenon", map[string]any{
			"name": result.Canonical, "phenomenon_type": string(r.PhenomenonType),
			"level_of_analysis": string(r.LevelOfAnalysis),
		})
		if problems := validator.Check("phenomenon", coerced); len(problems) > 0 {
			coerced = validator.Minimal("phenomenon", coerced)
		}

		out = append(out, graph.PhenomenonRecord{
			Phenomenon: model.Phenomenon{
				PhenomenonName:  coerced["name"].(string),
				PhenomenonType:  model.PhenomenonType(asString(coerced["phenomenon_type"])),
				Domain:          r.Domain,
				Description:     r.Description,
				Context:         r.Context,
				LevelOfAnalysis: model.LevelOfAnalysis(asString(coerced["level_of_analysis"])),
				OriginalName:    result.OriginalName,
			},
			Edge: model.StudiesPhenomenon{
				Section: r.Section,
				Context: r.Context,
			},
		})
	}
	return out
}

// assembleMethods normalizes methods and, from each method's reported
// software list, collects the distinct software tools used on the paper
// (§4.6 step 5): the extractor surfaces software names only nested under a
// method, so the paper-level Software entities are derived here rather than
// from a dedicated raw type.
func (a *Assembler) assembleMethods(ctx context.Context, raw []model.RawMethod) ([]graph.MethodRecord, []graph.SoftwareRecord) {
	methods := make([]graph.MethodRecord, 0, len(raw))
	seenSoftware := make(map[string]bool)
	var software []graph.SoftwareRecord

	for _, r := range raw {
		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		result := a.norm.Normalize(ctx, normalizer.ClassMethod, r.Name)

		coerced := validator.Coerce("method", map[string]any{
			"name": result.Canonical, "type": string(r.Type),
		})
		if problems := validator.Check("method", coerced); len(problems) > 0 {
			coerced = validator.Minimal("method", coerced)
		}

		var canonicalSoftware []string
		for _, s := range r.Software {
			if strings.TrimSpace(s) == "" {
				continue
			}
			swResult := a.norm.Normalize(ctx, normalizer.ClassSoftware, s)
			canonicalSoftware = append(canonicalSoftware, swResult.Canonical)
			if !seenSoftware[swResult.Canonical] {
				seenSoftware[swResult.Canonical] = true
				software = append(software, graph.SoftwareRecord{
					Software: model.Software{SoftwareName: swResult.Canonical},
				})
			}
		}

		methods = append(methods, graph.MethodRecord{
			Method: model.Method{
				Name:       coerced["name"].(string),
				Type:       model.MethodType(asString(coerced["type"])),
				Category:   r.Category,
				Software:   canonicalSoftware,
				SampleSize: r.SampleSize,
				TimePeriod: r.TimePeriod,
			},
			Edge: model.UsesMethod{Confidence: r.Confidence},
		})
	}
	return methods, software
}

func (a *Assembler) assembleVariables(paperID string, raw []model.RawVariable) []graph.VariableRecord {
	out := make([]graph.VariableRecord, 0, len(raw))
	for _, r := range raw {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		out = append(out, graph.VariableRecord{
			Variable: model.Variable{
				VariableID:         ids.VariableID(paperID, name),
				VariableName:       name,
				VariableType:       r.VariableType,
				Measurement:        r.Measurement,
				Operationalization: r.Operationalization,
			},
			Edge: model.UsesVariable{VariableType: r.VariableType},
		})
	}
	return out
}

func (a *Assembler) assembleFindings(paperID string, raw []model.RawFinding) []model.Finding {
	out := make([]model.Finding, 0, len(raw))
	for _, r := range raw {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			continue
		}
		out = append(out, model.Finding{
			FindingID:    ids.FindingID(paperID, text),
			FindingText:  text,
			FindingType:  r.FindingType,
			Significance: r.Significance,
			EffectSize:   r.EffectSize,
			Section:      r.Section,
		})
	}
	return out
}

func (a *Assembler) assembleContributions(paperID string, raw []model.RawContribution) []model.Contribution {
	out := make([]model.Contribution, 0, len(raw))
	for _, r := range raw {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			continue
		}
		out = append(out, model.Contribution{
			ContributionID:   ids.ContributionID(paperID, text),
			ContributionText: text,
			ContributionType: r.ContributionType,
			Section:          r.Section,
		})
	}
	return out
}

func (a *Assembler) assembleResearchQuestions(paperID string, raw []model.RawResearchQuestion) []model.ResearchQuestion {
	out := make([]model.ResearchQuestion, 0, len(raw))
	for _, r := range raw {
		question := strings.TrimSpace(r.Question)
		if question == "" {
			continue
		}
		out = append(out, model.ResearchQuestion{
			QuestionID:   ids.QuestionID(paperID, question),
			Question:     question,
			QuestionType: r.QuestionType,
			Section:      r.Section,
		})
	}
	return out
}

func (a *Assembler) assembleCitations(raw []model.RawCitation) []graph.CitationRecord {
	out := make([]graph.CitationRecord, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Title) == "" {
			continue
		}
		out = append(out, graph.CitationRecord{
			Title:        r.Title,
			CitationType: r.CitationType,
			Section:      r.Section,
		})
	}
	return out
}

// assembleLinks re-runs the same normalization the theories/phenomena
// themselves went through, so an explicit link's names match the canonical
// names upsertExplainsPhenomenon looks them up by (§4.8 explicit_bonus).
func (a *Assembler) assembleLinks(ctx context.Context, raw []model.TheoryPhenomenonLink) []model.TheoryPhenomenonLink {
	out := make([]model.TheoryPhenomenonLink, 0, len(raw))
	for _, l := range raw {
		if strings.TrimSpace(l.Theory) == "" || strings.TrimSpace(l.Phenomenon) == "" {
			continue
		}
		theory := a.norm.Normalize(ctx, normalizer.ClassTheory, l.Theory)
		phenomenon := a.norm.Normalize(ctx, normalizer.ClassPhenomenon, l.Phenomenon)
		out = append(out, model.TheoryPhenomenonLink{Theory: theory.Canonical, Phenomenon: phenomenon.Canonical})
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
